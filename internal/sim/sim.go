// Package sim drives a simulation tick: rule evaluation, integration,
// optional evolution of the rule strengths, and the snapshot for the views.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/olivierh59500/particle-rules/internal/config"
	"github.com/olivierh59500/particle-rules/internal/force"
	"github.com/olivierh59500/particle-rules/internal/particle"
)

// Evolution settings
const (
	EvolveEvery = 1000 // ticks between two mutations
	EvolveSigma = 0.1  // standard deviation of a mutation
)

// Sim owns the world and the rules of one simulation run.
type Sim struct {
	cfg   *config.Config
	world *particle.World
	rules []*force.Rule
	sched *force.Scheduler
	rng   *rand.Rand
	log   *slog.Logger

	// Evolution mutates the strengths every EvolveEvery ticks.
	Evolution bool

	ticks    int
	selected int
}

// New builds the world and rules described by cfg.
func New(cfg *config.Config, rng *rand.Rand, log *slog.Logger) (*Sim, error) {
	if log == nil {
		log = slog.Default()
	}
	world, rules, err := config.Build(cfg, rng)
	if err != nil {
		return nil, err
	}
	log.Info("world built",
		"width", world.Width, "height", world.Height,
		"particles", world.Len(), "types", len(world.Types()), "rules", len(rules))
	return &Sim{
		cfg:   cfg,
		world: world,
		rules: rules,
		sched: force.NewScheduler(rules, force.WithWorkers(cfg.Workers), force.WithLogger(log)),
		rng:   rng,
		log:   log,
	}, nil
}

func (s *Sim) World() *particle.World { return s.world }
func (s *Sim) Rules() []*force.Rule   { return s.rules }
func (s *Sim) Config() *config.Config { return s.cfg }
func (s *Sim) Ticks() int             { return s.ticks }

// Step runs one tick and returns the snapshot grid of the new positions.
// Every rule sees the positions of the previous tick; positions only move
// once all of them are done.
func (s *Sim) Step(ctx context.Context) ([][]int, error) {
	if err := s.sched.Tick(ctx); err != nil {
		return nil, fmt.Errorf("tick %d: %w", s.ticks, err)
	}
	s.world.Integrate(s.cfg.Dt, s.cfg.Friction)

	s.ticks++
	if s.Evolution && s.ticks%EvolveEvery == 0 {
		config.Mutate(s.rng, s.rules, EvolveSigma)
		s.log.Info("strengths mutated", "tick", s.ticks)
	}
	return s.world.Snapshot(), nil
}

// Randomize resets every rule strength to a random value in [-1, 1].
func (s *Sim) Randomize() {
	config.Randomize(s.rng, s.rules)
	s.log.Info("strengths randomized")
}

// Select moves the live-tuning cursor by delta rules, wrapping around.
func (s *Sim) Select(delta int) {
	if len(s.rules) == 0 {
		return
	}
	n := len(s.rules)
	s.selected = ((s.selected+delta)%n + n) % n
}

// Selected returns the rule under the live-tuning cursor and its type pair.
func (s *Sim) Selected() (rc config.RuleConfig, r *force.Rule, ok bool) {
	if len(s.rules) == 0 {
		return config.RuleConfig{}, nil, false
	}
	rc = s.cfg.Rules[s.selected]
	r = s.rules[s.selected]
	rc.Strength = r.Strength()
	return rc, r, true
}

// Nudge adds delta to the strength of the selected rule. It takes effect on
// the next Step.
func (s *Sim) Nudge(delta float64) {
	if _, r, ok := s.Selected(); ok {
		r.SetStrength(r.Strength() + delta)
	}
}

// SaveStrengths writes the strength table to path.
func (s *Sim) SaveStrengths(path string) error {
	if err := config.SaveStrengths(path, s.cfg, s.rules); err != nil {
		return err
	}
	s.log.Info("strengths saved", "path", path)
	return nil
}

// LoadStrengths reads the strength table at path.
func (s *Sim) LoadStrengths(path string) error {
	n, err := config.LoadStrengths(path, s.cfg, s.rules)
	if err != nil {
		return err
	}
	s.log.Info("strengths loaded", "path", path, "rules", n)
	return nil
}
