// Package config loads simulation settings from TOML and builds the world and
// its force rules from them.
package config

import (
	"fmt"
	"math/rand"

	"github.com/BurntSushi/toml"

	"github.com/olivierh59500/particle-rules/internal/force"
	"github.com/olivierh59500/particle-rules/internal/particle"
)

// TypeConfig describes one particle type.
type TypeConfig struct {
	ID       int     `toml:"id"`
	Name     string  `toml:"name"`
	Count    int     `toml:"count"`     // particles to create
	RangeMin float64 `toml:"range_min"` // unit: pixels
	RangeMax float64 `toml:"range_max"` // unit: pixels
	Color    string  `toml:"color"`     // "#rrggbb", empty for the default palette
}

// RuleConfig describes how type Affected reacts to type Source.
type RuleConfig struct {
	Affected int     `toml:"affected"`
	Source   int     `toml:"source"`
	Strength float64 `toml:"strength"` // > 0 attracts, < 0 repels
}

// Config holds the various parameters required for running a simulation.
type Config struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`

	Dt       float64 `toml:"dt"`
	Friction float64 `toml:"friction"`
	Workers  int     `toml:"workers"` // 0 selects GOMAXPROCS
	Seed     int64   `toml:"seed"`    // 0 seeds from the clock
	Layout   string  `toml:"layout"`  // uniform or perlin

	// View parameters
	FPS              int     `toml:"fps"`
	ParticleDiameter float64 `toml:"particle_diameter"`

	Types []TypeConfig `toml:"types"`
	Rules []RuleConfig `toml:"rules"`
}

// Default returns the default parameters: five types, every one
// interacting with every other one.
func Default() *Config {
	c := &Config{
		Width:            800,
		Height:           600,
		Dt:               0.1,
		Friction:         0.5,
		Layout:           string(particle.Uniform),
		FPS:              24,
		ParticleDiameter: 3,
		Types: []TypeConfig{
			{ID: 1, Name: "yellow", Count: 300, RangeMin: 0, RangeMax: 80},
			{ID: 2, Name: "red", Count: 300, RangeMin: 5, RangeMax: 60},
			{ID: 3, Name: "green", Count: 300, RangeMin: 0, RangeMax: 100},
			{ID: 4, Name: "gray", Count: 200, RangeMin: 10, RangeMax: 50},
			{ID: 5, Name: "cyan", Count: 200, RangeMin: 0, RangeMax: 70},
		},
	}
	strengths := [5][5]float64{
		{0.3, -0.2, 0.1, 0, -0.1},
		{0.2, -0.3, -0.1, 0.1, 0},
		{-0.2, 0.1, 0.2, -0.1, 0.1},
		{0, 0.1, -0.2, -0.3, 0.2},
		{0.1, 0, 0.1, -0.2, -0.1},
	}
	for i := range strengths {
		for j, g := range strengths[i] {
			c.Rules = append(c.Rules, RuleConfig{Affected: i + 1, Source: j + 1, Strength: g})
		}
	}
	return c
}

// Load parses the TOML config file at path over the default parameters.
// Types and rules given in the file replace the default ones entirely.
func Load(path string) (*Config, error) {
	c := Default()
	c.Types, c.Rules = nil, nil
	if _, err := toml.DecodeFile(path, c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if len(c.Types) == 0 {
		d := Default()
		c.Types = d.Types
		if len(c.Rules) == 0 {
			c.Rules = d.Rules
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that the configuration describes a runnable simulation.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("config: world size must be positive, but is %dx%d", c.Width, c.Height)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, but is %g", c.Dt)
	}
	if c.Friction < 0 || c.Friction*c.Dt > 1 {
		return fmt.Errorf("config: friction %g out of range [0, 1/dt]", c.Friction)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("config: fps must be positive, but is %d", c.FPS)
	}
	if _, err := particle.ParseLayout(c.Layout); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if len(c.Types) == 0 {
		return fmt.Errorf("config: no particle types")
	}

	ids := make(map[int]bool, len(c.Types))
	for _, t := range c.Types {
		if t.ID < 1 {
			return fmt.Errorf("config: type '%s' needs a positive id, but has %d", t.Name, t.ID)
		}
		if ids[t.ID] {
			return fmt.Errorf("config: duplicate type id %d", t.ID)
		}
		ids[t.ID] = true
		if t.Count < 0 {
			return fmt.Errorf("config: type %d has negative count %d", t.ID, t.Count)
		}
		if t.RangeMin >= t.RangeMax {
			return fmt.Errorf("config: type %d range [%g, %g] is empty", t.ID, t.RangeMin, t.RangeMax)
		}
	}

	pairs := make(map[[2]int]bool, len(c.Rules))
	for _, r := range c.Rules {
		if !ids[r.Affected] || !ids[r.Source] {
			return fmt.Errorf("config: rule %d->%d references an unknown type", r.Affected, r.Source)
		}
		key := [2]int{r.Affected, r.Source}
		if pairs[key] {
			return fmt.Errorf("config: duplicate rule %d->%d", r.Affected, r.Source)
		}
		pairs[key] = true
	}
	return nil
}

// Build creates the world, scatters the particles and creates one rule per
// configured pair. Rules are returned in configuration order.
func Build(c *Config, rng *rand.Rand) (*particle.World, []*force.Rule, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	layout, _ := particle.ParseLayout(c.Layout)

	types := make([]*particle.Type, 0, len(c.Types))
	for _, tc := range c.Types {
		t, err := particle.NewType(tc.ID, tc.Name, tc.RangeMin, tc.RangeMax)
		if err != nil {
			return nil, nil, err
		}
		types = append(types, t)
	}
	world, err := particle.NewWorld(c.Width, c.Height, types...)
	if err != nil {
		return nil, nil, err
	}
	for i, tc := range c.Types {
		if err := world.Scatter(rng, types[i], tc.Count, layout); err != nil {
			return nil, nil, err
		}
	}

	rules := make([]*force.Rule, 0, len(c.Rules))
	for _, rc := range c.Rules {
		r, err := force.NewRule(world.Group(rc.Affected), world.Group(rc.Source), rc.Strength, c.Width, c.Height)
		if err != nil {
			return nil, nil, fmt.Errorf("config: rule %d->%d: %w", rc.Affected, rc.Source, err)
		}
		rules = append(rules, r)
	}
	return world, rules, nil
}
