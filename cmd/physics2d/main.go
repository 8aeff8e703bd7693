package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"slices"
	"syscall"
	"time"

	"github.com/0x5844/rigid2d/geom"
	"github.com/0x5844/rigid2d/internal/record"
	"github.com/0x5844/rigid2d/physics"
	"github.com/0x5844/rigid2d/scene"
)

// Build information (set by build script)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

type Config struct {
	// Simulation parameters
	GravityX     float64
	GravityY     float64
	GravityScale float64
	TimeStep     float64
	Duration     float64
	MaxFPS       int
	SleepEnabled bool

	// Performance settings
	Workers int
	Batch   int

	// Output settings
	Verbose       bool
	Quiet         bool
	StatsInterval float64
	ProfileCPU    string
	ProfileMem    string
	RecordFile    string

	// Scene settings
	SceneFile   string
	Watch       bool
	BodiesCount int
	SceneType   string
	Seed        int64

	// Material overrides, negative means keep the scene's values
	Restitution float64
	Friction    float64

	set map[string]bool
}

func parseFlags() *Config {
	config := &Config{}

	// Simulation parameters
	flag.Float64Var(&config.GravityX, "gravity-x", 0.0, "gravity X component")
	flag.Float64Var(&config.GravityY, "gravity-y", 9.81, "gravity Y component (positive is down)")
	flag.Float64Var(&config.GravityScale, "gravity-scale", 120, "gravity multiplier (world units per meter)")
	flag.Float64Var(&config.TimeStep, "timestep", 1.0/600.0, "maximum physics sub-step")
	flag.Float64Var(&config.Duration, "duration", 0, "simulation duration in seconds (0 = infinite)")
	flag.IntVar(&config.MaxFPS, "fps", 60, "frames per second")
	flag.BoolVar(&config.SleepEnabled, "sleep", true, "enable body sleeping")

	// Performance settings
	flag.IntVar(&config.Workers, "workers", runtime.NumCPU(), "concurrent simulations in batch mode")
	flag.IntVar(&config.Batch, "batch", 0, "run this many seeded scenes headless and exit")

	// Output settings
	flag.BoolVar(&config.Verbose, "verbose", false, "verbose output")
	flag.BoolVar(&config.Quiet, "quiet", false, "minimal output")
	flag.Float64Var(&config.StatsInterval, "stats-interval", 2.0, "statistics reporting interval")
	flag.StringVar(&config.ProfileCPU, "profile-cpu", "", "CPU profile output file")
	flag.StringVar(&config.ProfileMem, "profile-mem", "", "memory profile output file")
	flag.StringVar(&config.RecordFile, "record", "", "write msgpack frame snapshots to this file")

	// Scene settings
	flag.StringVar(&config.SceneFile, "scene", "", "YAML or JSON scene file to load")
	flag.BoolVar(&config.Watch, "watch", false, "reload the scene file when it changes")
	flag.IntVar(&config.BodiesCount, "bodies", 100, "number of bodies for generated scenes")
	flag.StringVar(&config.SceneType, "scene-type", "default", "scene type (default, pyramid, rain, container, pendulum, mixed)")
	flag.Int64Var(&config.Seed, "seed", time.Now().UnixNano(), "random seed for generated scenes")

	// Material overrides
	flag.Float64Var(&config.Restitution, "restitution", -1, "restitution for every body (-1 = scene value)")
	flag.Float64Var(&config.Friction, "friction", -1, "static friction for every body, dynamic is 80% of it (-1 = scene value)")

	// Version flag
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "show version information")

	// Custom usage
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Physics2D - 2D Rigid-Body Physics Simulator\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [SCENE FILES...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -bodies 500 -scene-type pyramid\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -scene scene.yaml -watch\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -batch 8 -duration 10 -scene-type rain\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -scene scene.json -duration 5 -record run.msgpack\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nVersion: %s\n", Version)
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("Physics2D version %s\n", Version)
		fmt.Printf("Built: %s\n", BuildTime)
		fmt.Printf("Go: %s\n", GoVersion)
		os.Exit(0)
	}

	config.set = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { config.set[f.Name] = true })

	// Validate configuration
	if err := validateConfig(config, flag.Args()); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return config
}

func validateConfig(config *Config, files []string) error {
	if config.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if config.MaxFPS < 1 || config.MaxFPS > 1000 {
		return fmt.Errorf("fps must be between 1 and 1000")
	}
	if config.TimeStep <= 0 {
		return fmt.Errorf("timestep must be positive")
	}
	if config.Duration < 0 {
		return fmt.Errorf("duration cannot be negative")
	}
	if config.BodiesCount < 1 {
		return fmt.Errorf("bodies count must be at least 1")
	}
	if config.Batch < 0 {
		return fmt.Errorf("batch cannot be negative")
	}
	// Scene files may carry their own duration; runBatch checks those.
	if config.Batch > 0 && config.Duration == 0 {
		return fmt.Errorf("generated batch runs need a duration")
	}
	if config.Watch && config.SceneFile == "" {
		return fmt.Errorf("watch needs a scene file")
	}
	if !slices.Contains(scene.Types, config.SceneType) {
		return fmt.Errorf("invalid scene type: %s", config.SceneType)
	}
	return nil
}

// applyOverrides writes the explicitly set command-line values into a scene.
func applyOverrides(cfg *scene.Config, config *Config) {
	if config.set["gravity-x"] || config.set["gravity-y"] || cfg.Gravity == nil {
		g := geom.NewVector2(config.GravityX, config.GravityY)
		cfg.Gravity = &g
	}
	if config.set["gravity-scale"] || cfg.GravityScale == 0 {
		cfg.GravityScale = config.GravityScale
	}
	if config.set["timestep"] || cfg.TimeStep == 0 {
		cfg.TimeStep = config.TimeStep
	}

	for i := range cfg.Bodies {
		b := &cfg.Bodies[i]
		if config.Restitution >= 0 {
			e := config.Restitution
			b.Restitution = &e
		}
		if config.Friction >= 0 {
			static, dynamic := config.Friction, config.Friction*0.8
			b.StaticFriction, b.DynamicFriction = &static, &dynamic
		}
	}
}

func loadScene(config *Config) (*scene.Config, error) {
	if config.SceneFile != "" {
		return scene.Load(config.SceneFile)
	}
	return scene.Generate(config.SceneType, config.BodiesCount, rand.New(rand.NewSource(config.Seed)))
}

func buildWorld(cfg *scene.Config, config *Config) (*physics.World, error) {
	applyOverrides(cfg, config)
	wc := cfg.WorldConfig(log.Default())
	wc.Sleep.Disabled = !config.SleepEnabled
	return scene.Build(cfg, wc)
}

func main() {
	// Parse command line flags
	config := parseFlags()

	// Set up logging
	if config.Quiet {
		log.SetOutput(io.Discard)
	} else if config.Verbose {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	// Set up profiling
	if config.ProfileCPU != "" {
		f, err := os.Create(config.ProfileCPU)
		if err != nil {
			log.Fatal("Could not create CPU profile:", err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("Could not start CPU profile:", err)
		}
		defer pprof.StopCPUProfile()
	}

	log.Printf("Starting Physics2D v%s", Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if config.Batch > 0 || flag.NArg() > 0 {
		runBatchMode(ctx, config)
	} else {
		runInteractive(ctx, config)
	}

	// Memory profiling
	if config.ProfileMem != "" {
		f, err := os.Create(config.ProfileMem)
		if err != nil {
			log.Printf("Could not create memory profile: %v", err)
		} else {
			defer f.Close()
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				log.Printf("Could not write memory profile: %v", err)
			}
		}
	}
}

func runBatchMode(ctx context.Context, config *Config) {
	jobs, err := batchJobs(config, flag.Args())
	if err != nil {
		log.Fatalf("Failed to prepare batch: %v", err)
	}
	log.Printf("Running %d simulations (Workers: %d, Duration: %.2fs)", len(jobs), config.Workers, config.Duration)

	start := time.Now()
	results, err := runBatch(ctx, config, jobs)
	if err != nil {
		log.Fatalf("Batch failed: %v", err)
	}
	reportBatch(results)
	log.Printf("Batch completed in %v", time.Since(start).Round(time.Millisecond))
}

func runInteractive(ctx context.Context, config *Config) {
	sceneConfig, err := loadScene(config)
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}
	if sceneConfig.Duration > 0 && !config.set["duration"] {
		config.Duration = sceneConfig.Duration
	}

	world, err := buildWorld(sceneConfig, config)
	if err != nil {
		log.Fatalf("Failed to setup scene: %v", err)
	}
	if config.SceneFile != "" {
		log.Printf("Loaded scene from %s", config.SceneFile)
	} else {
		log.Printf("Generated %s scene with %d bodies (seed %d)", config.SceneType, len(sceneConfig.Bodies), config.Seed)
	}

	engine := NewEngine(world, config.MaxFPS, config.Duration)

	if config.RecordFile != "" {
		f, err := os.Create(config.RecordFile)
		if err != nil {
			log.Fatalf("Could not create recording: %v", err)
		}
		w := bufio.NewWriter(f)
		defer func() {
			if err := w.Flush(); err != nil {
				log.Printf("Could not flush recording: %v", err)
			}
			f.Close()
		}()
		engine.SetRecorder(record.NewRecorder(w))
	}

	if config.Watch {
		watcher, err := scene.NewWatcher(config.SceneFile)
		if err != nil {
			log.Fatalf("Could not watch scene: %v", err)
		}
		defer watcher.Close()
		go watchScene(watcher, engine, config)
	}

	go reportStats(ctx, engine, config.StatsInterval, config.Verbose)

	log.Printf("Physics simulation started (FPS: %d, Sub-step: %.5fs)", config.MaxFPS, config.TimeStep)
	if config.Duration > 0 {
		log.Printf("Simulation duration: %.2f seconds", config.Duration)
	} else {
		log.Println("Press Ctrl+C to stop")
	}

	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Engine error: %v", err)
	}
	if ctx.Err() != nil {
		log.Println("Shutting down gracefully...")
	}

	// Final statistics
	stats := engine.Stats()
	log.Printf("Simulation completed:")
	log.Printf("  Simulated: %.2fs", stats.SimTime)
	log.Printf("  Final FPS: %.1f", stats.FPS)
	log.Printf("  Bodies: %d (Sleeping: %d)", stats.World.Bodies, stats.World.Sleeping)
	log.Printf("  Steps: %d", stats.World.Steps)
	log.Printf("  Frames: %d", stats.Frames)
	if stats.SimTime > 0 {
		log.Printf("  Average steps/second: %.1f", float64(stats.World.Steps)/stats.SimTime)
	}
}

func watchScene(watcher *scene.Watcher, engine *Engine, config *Config) {
	for {
		select {
		case name, ok := <-watcher.Events:
			if !ok {
				return
			}
			cfg, err := scene.Load(name)
			if err != nil {
				log.Printf("Reload failed, keeping current scene: %v", err)
				continue
			}
			world, err := buildWorld(cfg, config)
			if err != nil {
				log.Printf("Reload failed, keeping current scene: %v", err)
				continue
			}
			engine.Reload(world)
			log.Printf("Reloaded scene from %s (%d bodies)", name, len(cfg.Bodies))
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watch error: %v", err)
		}
	}
}

func reportStats(ctx context.Context, engine *Engine, interval float64, verbose bool) {
	ticker := time.NewTicker(time.Duration(interval * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s := engine.Stats()
			awake := s.World.Bodies - s.World.Sleeping

			if verbose {
				log.Printf("FPS: %.1f | Bodies: %d (Awake: %d) | Collisions: %d | "+
					"Frame: %.2f/%.2f/%.2f ms | Sim: %.2fs",
					s.FPS, s.World.Bodies, awake, s.World.Collisions,
					s.AvgFrameTime*1000, s.MinFrameTime*1000, s.MaxFrameTime*1000,
					s.SimTime)
			} else {
				log.Printf("FPS: %.1f | Bodies: %d | Awake: %d | Collisions: %d",
					s.FPS, s.World.Bodies, awake, s.World.Collisions)
			}

		case <-ctx.Done():
			return
		}
	}
}
