package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/gridmind/agentsim"
	"github.com/pthm-cable/gridmind/components"
	"github.com/pthm-cable/gridmind/config"
	"github.com/pthm-cable/gridmind/engine"
	"github.com/pthm-cable/gridmind/mediator"
	"github.com/pthm-cable/gridmind/sim"
	"github.com/pthm-cable/gridmind/telemetry"
	"github.com/pthm-cable/gridmind/world"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logSteps := flag.Bool("log-steps", false, "Log every scheduler step via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxSteps := flag.Int("max-steps", 0, "Stop after N steps (0 = use config)")
	mode := flag.String("mode", "", "Execution mode: continuous or single-step (empty = use config)")
	speedFactor := flag.Float64("speed-factor", -1, "Real-time speed factor (<0 = use config)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	// CLI overrides
	if *maxSteps > 0 {
		cfg.Schedule.MaxSteps = *maxSteps
	}
	if *mode != "" {
		cfg.Schedule.Mode = *mode
	}
	if *speedFactor >= 0 {
		cfg.Schedule.SpeedFactor = *speedFactor
	}

	simulation, err := buildSimulation(cfg, rng, logger)
	if err != nil {
		slog.Error("failed to build simulation", "error", err)
		os.Exit(1)
	}

	// Telemetry output
	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	if output != nil {
		defer output.Close()
		if err := output.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config snapshot", "error", err)
		}
	}
	collector := telemetry.NewCollector(cfg.Telemetry.WindowSteps,
		func(rec telemetry.StepRecord) {
			if err := output.WriteStep(rec); err != nil {
				slog.Error("telemetry write failed", "error", err)
			}
		},
		func(stats telemetry.WindowStats) {
			if err := output.WriteWindow(stats); err != nil {
				slog.Error("telemetry write failed", "error", err)
			}
			slog.Info("window stats",
				"steps", stats.Steps,
				"moved", stats.Moved,
				"blocked", stats.Blocked,
				"due_gap_mean", stats.DueGapMean,
			)
		},
	)
	simulation.Subscribe(collector)

	if *logSteps {
		simulation.Subscribe(sim.ListenerFunc(func(ev sim.StepEvent) {
			slog.Info("step",
				"step", ev.Step,
				"agent", ev.Agent,
				"due", ev.Due,
				"next_due", ev.NextDue,
				"production", ev.Production,
			)
		}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting simulation",
		"seed", rngSeed,
		"agents", len(cfg.Agents),
		"grid_rows", cfg.World.Rows,
		"grid_cols", cfg.World.Cols,
		"mode", cfg.Schedule.Mode,
		"speed_factor", cfg.Schedule.SpeedFactor,
	)

	if err := simulation.Run(ctx); err != nil {
		slog.Error("simulation aborted", "error", err)
		os.Exit(1)
	}
	collector.Flush(simulation.StepCount())
}

// buildSimulation assembles the grid, mediator, agents, and scheduler
// from configuration.
func buildSimulation(cfg *config.Config, rng *rand.Rand, logger *slog.Logger) (*sim.Simulation, error) {
	grid, err := world.NewGrid(cfg.World.Rows, cfg.World.Cols)
	if err != nil {
		return nil, err
	}
	if err := world.ApplyLayout(grid, cfg.World.Layout); err != nil {
		return nil, err
	}

	keymap, err := mediator.KeymapFromConfig(cfg.Keymap)
	if err != nil {
		return nil, err
	}
	middleman := mediator.New(grid, keymap)

	execMode, err := sim.ParseMode(cfg.Schedule.Mode)
	if err != nil {
		return nil, err
	}
	simulation := sim.New(grid, middleman, sim.NewClock(cfg.Schedule.SpeedFactor), sim.Options{
		Mode:        execMode,
		StepTimeout: cfg.Derived.StepTimeout,
		MaxSteps:    cfg.Schedule.MaxSteps,
		Logger:      logger,
	})

	// Explicit placements first so random placement sees those cells
	// occupied.
	byName := make(map[string]*agentsim.Agent, len(cfg.Agents))
	var randomNames []string
	for _, ac := range cfg.Agents {
		if ac.Random {
			randomNames = append(randomNames, ac.Name)
			continue
		}
		cell := components.Position{Row: ac.Row, Col: ac.Col}
		e, err := grid.Place(components.KindAgent, ac.Name, cell)
		if err != nil {
			return nil, err
		}
		byName[ac.Name] = &agentsim.Agent{Name: ac.Name, Entity: e, Radius: ac.Radius}
	}
	if len(randomNames) > 0 {
		randomEntities, err := world.PlaceRandom(grid, randomNames, rng)
		if err != nil {
			return nil, err
		}
		for _, ac := range cfg.Agents {
			if ac.Random {
				byName[ac.Name] = &agentsim.Agent{Name: ac.Name, Entity: randomEntities[ac.Name], Radius: ac.Radius}
			}
		}
	}

	// Engines and registration, in declaration order (the tie-break key).
	for _, ac := range cfg.Agents {
		a := byName[ac.Name]
		engineSeed := ac.Seed
		if engineSeed == 0 {
			engineSeed = rng.Int63()
		}
		eng, err := engine.New(ac.Type, engineSeed)
		if err != nil {
			return nil, err
		}
		a.Engine = eng
		if err := simulation.Register(a); err != nil {
			return nil, err
		}
	}

	return simulation, nil
}
