package force

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrRulePanic wraps a panic recovered from a rule evaluation.
var ErrRulePanic = errors.New("force: rule panicked")

// Scheduler runs a set of rules once per tick.
//
// Every rule is a separate task on a bounded worker pool and accumulates into
// its own buffer. Velocities are only written afterwards, by a single merge
// pass in rule order, so rules sharing an affected group never race and a
// failed tick leaves every velocity untouched.
type Scheduler struct {
	rules    []*Rule
	buffers  [][]r2.Vec
	strength []float64
	workers  int
	log      *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithWorkers bounds the number of rules evaluated concurrently.
// Values below 1 select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Scheduler) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		s.workers = n
	}
}

// WithLogger sets the logger used for tick diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// NewScheduler creates a scheduler over rules. The slice is not copied.
func NewScheduler(rules []*Rule, opts ...Option) *Scheduler {
	s := &Scheduler{
		rules:   rules,
		workers: runtime.GOMAXPROCS(0),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len returns the number of rules.
func (s *Scheduler) Len() int { return len(s.rules) }

// Rule returns the i-th rule.
func (s *Scheduler) Rule(i int) *Rule { return s.rules[i] }

// Rules returns all rules in evaluation order.
func (s *Scheduler) Rules() []*Rule { return s.rules }

// Tick evaluates every rule and merges the result into the affected
// particles' velocities. Positions must not change while Tick runs.
func (s *Scheduler) Tick(ctx context.Context) error {
	start := time.Now()
	s.grow()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, r := range s.rules {
		s.strength[i] = r.Strength()
		g.Go(func() (err error) {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer func() {
				if v := recover(); v != nil {
					err = fmt.Errorf("%w: rule %d: %v", ErrRulePanic, i, v)
				}
			}()
			return s.rules[i].Accumulate(s.buffers[i])
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error("tick aborted", "rules", len(s.rules), "err", err)
		return err
	}

	s.merge()
	s.log.Debug("tick", "rules", len(s.rules), "workers", s.workers, "elapsed", time.Since(start))
	return nil
}

// merge is the only place velocities are written during a tick.
func (s *Scheduler) merge() {
	for i, r := range s.rules {
		if len(r.source) == 0 {
			continue
		}
		buf := s.buffers[i]
		for j, p := range r.affected {
			p.InfluenceVelocity(buf[j].X, buf[j].Y, s.strength[i])
		}
	}
}

// grow sizes the per-rule buffers to the current groups, reusing storage.
func (s *Scheduler) grow() {
	if len(s.buffers) != len(s.rules) {
		s.buffers = make([][]r2.Vec, len(s.rules))
		s.strength = make([]float64, len(s.rules))
	}
	for i, r := range s.rules {
		n := len(r.affected)
		if cap(s.buffers[i]) < n {
			s.buffers[i] = make([]r2.Vec, n)
		}
		s.buffers[i] = s.buffers[i][:n]
	}
}
