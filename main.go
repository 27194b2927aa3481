// Command particle-rules runs a particle life simulation on a toroidal world.
//
// Usage:
//
//	particle-rules [flags]
//
// Without -config the built-in five type setup is used. By default the
// simulation opens a window; -term draws it in the terminal instead and
// -headless runs a fixed number of ticks and only logs.
//
// Window keys: Space pause, R randomize strengths, E evolution mode,
// S/L save/load strengths, Tab/Shift-Tab select a rule, Up/Down tune it,
// mouse wheel zoom, drag to pan.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/olivierh59500/particle-rules/internal/config"
	"github.com/olivierh59500/particle-rules/internal/palette"
	"github.com/olivierh59500/particle-rules/internal/sim"
	"github.com/olivierh59500/particle-rules/internal/term"
)

func main() {
	var (
		configPath, strengths, logPath string
		termMode, headless, verbose    bool
		ticks, workers                 int
		seed                           int64
	)
	flag.StringVar(&configPath, "config", "", "TOML config file. Default is the built-in setup.")
	flag.StringVar(&strengths, "strengths", DefaultStrengths, "Strength table used by the S and L keys.")
	flag.StringVar(&logPath, "log", "", "File to write logs to. Default is stderr, discarded with -term.")
	flag.BoolVar(&termMode, "term", false, "Draw in the terminal instead of a window.")
	flag.BoolVar(&headless, "headless", false, "Run without any view and log progress.")
	flag.BoolVar(&verbose, "v", false, "Log every tick.")
	flag.IntVar(&ticks, "ticks", 1000, "Number of ticks to run with -headless.")
	flag.IntVar(&workers, "workers", -1, "Rules evaluated in parallel. Overrides the config when >= 0.")
	flag.Int64Var(&seed, "seed", 0, "Random seed. Overrides the config when non-zero.")
	flag.Parse()

	logger, closeLog, err := newLogger(logPath, verbose, termMode)
	if err != nil {
		fatal(slog.Default(), err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	cfg := config.Default()
	if configPath != "" {
		if cfg, err = config.Load(configPath); err != nil {
			fatal(logger, err)
		}
	}
	if workers >= 0 {
		cfg.Workers = workers
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	logger.Info("starting", "config", configPath, "seed", cfg.Seed, "workers", cfg.Workers)

	pal, err := cfg.Palette()
	if err != nil {
		fatal(logger, err)
	}
	s, err := sim.New(cfg, rand.New(rand.NewSource(cfg.Seed)), logger)
	if err != nil {
		fatal(logger, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case headless:
		err = runHeadless(ctx, s, ticks, logger)
	case termMode:
		err = runTerm(ctx, s, pal, cfg.FPS)
	default:
		g := NewSimulation(s, pal, logger)
		g.StrengthsPath = strengths
		ebiten.SetWindowSize(cfg.Width, cfg.Height)
		ebiten.SetWindowTitle("Particle Rules")
		ebiten.SetTPS(cfg.FPS)
		err = ebiten.RunGame(g)
	}
	if err != nil {
		fatal(logger, err)
	}
}

func runHeadless(ctx context.Context, s *sim.Sim, ticks int, log *slog.Logger) error {
	start := time.Now()
	for i := 0; i < ticks; i++ {
		if _, err := s.Step(ctx); err != nil {
			return err
		}
		if s.Ticks()%100 == 0 {
			log.Info("progress", "tick", s.Ticks(), "mean_speed", s.World().MeanSpeed())
		}
	}
	log.Info("done", "ticks", ticks, "elapsed", time.Since(start),
		"mean_speed", s.World().MeanSpeed())
	return nil
}

func runTerm(ctx context.Context, s *sim.Sim, pal *palette.Palette, fps int) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	return term.New(screen, pal).Run(ctx, s.Step, fps)
}

// newLogger writes text logs to path, or stderr when path is empty. A
// terminal view owns stderr, so logs are dropped there unless a file is given.
func newLogger(path string, verbose, termMode bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case path != "":
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	case termMode:
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn, nil
}

// fatal logs err and exits with a non-zero status.
func fatal(log *slog.Logger, err error) {
	log.Error("fatal", "err", err)
	os.Exit(1)
}
