package config

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/olivierh59500/particle-rules/internal/force"
)

// Key names the rule where type affected reacts to type source.
func Key(affected, source int) string {
	return fmt.Sprintf("%d->%d", affected, source)
}

// SaveStrengths writes the current strength of every rule to path as JSON.
// rules must be the ones Build returned for c.
func SaveStrengths(path string, c *Config, rules []*force.Rule) error {
	if len(rules) != len(c.Rules) {
		return fmt.Errorf("config: %d rules for %d configured pairs", len(rules), len(c.Rules))
	}
	table := make(map[string]float64, len(rules))
	for i, rc := range c.Rules {
		table[Key(rc.Affected, rc.Source)] = rules[i].Strength()
	}
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadStrengths reads a table written by SaveStrengths and assigns the
// strengths to the matching rules. Pairs missing from the file keep their
// value. It returns how many rules were updated.
func LoadStrengths(path string, c *Config, rules []*force.Rule) (int, error) {
	if len(rules) != len(c.Rules) {
		return 0, fmt.Errorf("config: %d rules for %d configured pairs", len(rules), len(c.Rules))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var table map[string]float64
	if err := json.Unmarshal(data, &table); err != nil {
		return 0, fmt.Errorf("config: %s: %w", path, err)
	}

	n := 0
	for i, rc := range c.Rules {
		if g, ok := table[Key(rc.Affected, rc.Source)]; ok {
			rules[i].SetStrength(g)
			n++
		}
	}
	return n, nil
}

// Randomize resets every strength to a uniform value in [-1, 1].
func Randomize(rng *rand.Rand, rules []*force.Rule) {
	for _, r := range rules {
		r.SetStrength(rng.Float64()*2 - 1)
	}
}

// Mutate slightly changes every strength, keeping it within [-1, 1].
func Mutate(rng *rand.Rand, rules []*force.Rule, sigma float64) {
	for _, r := range rules {
		r.SetStrength(clamp(r.Strength() + rng.NormFloat64()*sigma))
	}
}

func clamp(g float64) float64 {
	if g > 1 {
		return 1
	} else if g < -1 {
		return -1
	}
	return g
}
