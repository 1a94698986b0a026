package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Scrimzay/npcbattle/internal/config"
	"github.com/Scrimzay/npcbattle/internal/console"
	"github.com/Scrimzay/npcbattle/internal/logging"
	"github.com/Scrimzay/npcbattle/internal/server"
	"github.com/Scrimzay/npcbattle/internal/sink"
	"github.com/Scrimzay/npcbattle/internal/telemetry"
	"github.com/Scrimzay/npcbattle/internal/tui"
	"github.com/Scrimzay/npcbattle/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "config file (.toml or .yaml)")
	rosterPath := flag.String("roster", "", "load NPCs from this roster instead of a random population")
	savePath := flag.String("save", "", "write the survivors' roster here at shutdown")
	duration := flag.Duration("duration", 0, "run length (overrides config)")
	seed := flag.Int64("seed", 0, "random seed (overrides config, 0 = wall clock)")
	skirmish := flag.Float64("skirmish", 0, "run one battle round with this range and exit")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *duration > 0 {
		cfg.Loops.Duration = *duration
	}
	if *seed != 0 {
		cfg.World.Seed = *seed
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Setup(ctx)
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				log.Warn("Telemetry shutdown failed", zap.Error(err))
			}
		}()
		log.Info("Telemetry enabled")
	}

	out := console.NewOutput(os.Stdout, cfg.Sinks.Color)
	tuiMode := cfg.Display.Mode == "tui" && *skirmish <= 0

	// Kill observers, in notification order
	var observers []world.Observer
	if cfg.Sinks.Console && !tuiMode {
		observers = append(observers, console.NewKillSink(out))
	}

	if cfg.Sinks.BattleLog != "" {
		battleLog, err := sink.OpenFile(cfg.Sinks.BattleLog, log)
		if err != nil {
			return err
		}
		defer battleLog.Close()
		observers = append(observers, battleLog)
	}

	var ledger *sink.Ledger
	if cfg.Sinks.Ledger != "" {
		ledger, err = sink.OpenLedger(cfg.Sinks.Ledger, log)
		if err != nil {
			return err
		}
		defer ledger.Close()
		observers = append(observers, ledger)
	}

	var hub *server.Hub
	if cfg.Server.Enabled && *skirmish <= 0 {
		hub = server.NewHub(nil, log)
		observers = append(observers, hub)
	}

	resolver := world.NewResolver(observers...)
	bounds := world.Bounds{Width: cfg.World.Width, Height: cfg.World.Height}
	factory := world.NewFactory(bounds, cfg.World.NamePrefix)
	rng := world.BootstrapRand(cfg.World.Seed)

	var entities []*world.Entity
	if *rosterPath != "" {
		entities, err = world.LoadRosterFile(*rosterPath, factory)
		switch {
		case errors.Is(err, world.ErrRosterTruncated):
			log.Warn("Roster truncated", zap.String("path", *rosterPath), zap.Int("loaded", len(entities)), zap.Error(err))

		case err != nil:
			return err
		}
		log.Info("Roster loaded", zap.String("path", *rosterPath), zap.Int("npcs", len(entities)))
	} else {
		entities = factory.Populate(cfg.World.Population, rng)
	}
	reg := world.NewRegistry(entities...)

	if *skirmish > 0 {
		stats := resolver.Skirmish(reg, *skirmish, rng)
		log.Info("Skirmish finished", zap.Int("pairs", stats.Pairs), zap.Int("kills", stats.Kills), zap.Int("removed", stats.Removed))
		out.Roster(reg.Records())
		return saveRoster(*savePath, reg.Survivors(), log)
	}

	var displays []world.Display
	var screen *tui.Screen
	var renderer *tui.Renderer
	switch cfg.Display.Mode {
	case "text":
		displays = append(displays, console.NewMapDisplay(out))

	case "tui":
		screen, err = tui.NewScreen()
		if err != nil {
			return fmt.Errorf("init screen: %w", err)
		}
		renderer = tui.NewRenderer(screen)
		displays = append(displays, renderer)
	}
	if hub != nil {
		displays = append(displays, hub)
	}

	sim := world.NewSimulation(reg, resolver, world.Options{
		Bounds: bounds,
		Intervals: world.Intervals{
			Move:   cfg.Loops.Move,
			Combat: cfg.Loops.Combat,
			Render: cfg.Loops.Render,
		},
		Seed:     cfg.World.Seed,
		Displays: displays,
		Log:      log,
	})

	var srv *http.Server
	if hub != nil {
		hub.SetSource(sim)
		go hub.Run(ctx)

		gin.SetMode(gin.ReleaseMode)
		srv = &http.Server{
			Addr: cfg.Server.BindAddress,
			Handler: server.SetupRouter(server.Deps{
				Registry:   reg,
				Factory:    factory,
				Hub:        hub,
				Ledger:     ledgerOrNil(ledger),
				RosterPath: cfg.Roster.Path,
				Log:        log,
			}),
		}

		go func() {
			log.Info("Server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Server failed", zap.Error(err))
			}
		}()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if renderer != nil {
		go renderer.WaitQuit(runCtx, cancel)
	} else {
		out.Banner(cfg.Loops.Duration, bounds, reg.Len())
	}

	survivors := sim.Run(runCtx, cfg.Loops.Duration)

	if screen != nil {
		screen.Close()
	}

	if srv != nil {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(sctx); err != nil {
			log.Warn("Server shutdown failed", zap.Error(err))
		}
		scancel()
	}

	out.Survivors(survivors)
	return saveRoster(*savePath, survivors, log)
}

// A nil *Ledger must not become a non-nil interface
func ledgerOrNil(l *sink.Ledger) server.KillLedger {
	if l == nil {
		return nil
	}
	return l
}

func saveRoster(path string, survivors []world.Record, log *zap.Logger) error {
	if path == "" {
		return nil
	}

	if err := world.SaveRosterFile(path, survivors); err != nil {
		return err
	}

	log.Info("Roster saved", zap.String("path", path), zap.Int("npcs", len(survivors)))
	return nil
}
