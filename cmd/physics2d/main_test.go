package main

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/0x5844/rigid2d/geom"
	"github.com/0x5844/rigid2d/internal/record"
	"github.com/0x5844/rigid2d/physics"
	"github.com/0x5844/rigid2d/scene"
)

func testConfig() *Config {
	return &Config{
		GravityY:     9.81,
		GravityScale: 120,
		TimeStep:     1.0 / 600,
		Duration:     0.05,
		MaxFPS:       1000,
		SleepEnabled: true,
		Workers:      2,
		BodiesCount:  8,
		SceneType:    "default",
		Seed:         1,
		Restitution:  -1,
		Friction:     -1,
		set:          map[string]bool{},
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		files  []string
		ok     bool
	}{
		{"defaults", func(*Config) {}, nil, true},
		{"workers", func(c *Config) { c.Workers = 0 }, nil, false},
		{"fps", func(c *Config) { c.MaxFPS = 5000 }, nil, false},
		{"timestep", func(c *Config) { c.TimeStep = 0 }, nil, false},
		{"scene type", func(c *Config) { c.SceneType = "tornado" }, nil, false},
		{"batch without duration", func(c *Config) { c.Batch, c.Duration = 2, 0 }, nil, false},
		{"files without duration", func(c *Config) { c.Duration = 0 }, []string{"a.yaml"}, true},
		{"watch without scene", func(c *Config) { c.Watch = true }, nil, false},
		{"endless interactive", func(c *Config) { c.Duration = 0 }, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testConfig()
			tt.mutate(c)
			err := validateConfig(c, tt.files)
			if (err == nil) != tt.ok {
				t.Errorf("validateConfig() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	g := geom.NewVector2(1, 2)
	cfg := &scene.Config{
		Gravity:      &g,
		GravityScale: 3,
		Bodies:       []scene.BodyConfig{{Shape: scene.ShapeConfig{Type: scene.ShapeCircle, Radius: 1}}},
	}

	c := testConfig()
	c.Restitution = 0.5
	c.Friction = 0.5
	applyOverrides(cfg, c)

	if *cfg.Gravity != g || cfg.GravityScale != 3 {
		t.Errorf("scene values overridden by unset flags: %v x%v", *cfg.Gravity, cfg.GravityScale)
	}
	if cfg.TimeStep != c.TimeStep {
		t.Errorf("time step = %v, want flag default %v", cfg.TimeStep, c.TimeStep)
	}
	b := cfg.Bodies[0]
	if *b.Restitution != 0.5 || *b.StaticFriction != 0.5 || math.Abs(*b.DynamicFriction-0.4) > 1e-12 {
		t.Errorf("material overrides not applied: %+v", b)
	}

	c.set["gravity-y"] = true
	applyOverrides(cfg, c)
	if *cfg.Gravity != geom.NewVector2(0, 9.81) {
		t.Errorf("explicit gravity flag ignored: %v", *cfg.Gravity)
	}
}

func TestBuildWorld_SleepFlag(t *testing.T) {
	c := testConfig()
	c.SleepEnabled = false
	cfg, err := scene.Generate("pyramid", 4, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	world, err := buildWorld(cfg, c)
	if err != nil {
		t.Fatal(err)
	}
	if !world.Config().Sleep.Disabled {
		t.Error("sleep flag not applied")
	}
}

func TestRunBatch(t *testing.T) {
	c := testConfig()
	c.Batch = 3

	jobs, err := batchJobs(c, nil)
	if err != nil {
		t.Fatalf("batchJobs: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("got %d jobs", len(jobs))
	}

	results, err := runBatch(context.Background(), c, jobs)
	if err != nil {
		t.Fatalf("runBatch: %v", err)
	}
	for _, r := range results {
		// 0.05s at 1000 fps: the initial frame plus 50 more.
		if r.frames != 51 {
			t.Errorf("%s: %d frames, want 51", r.name, r.frames)
		}
		if r.stats.Steps == 0 || r.stats.Bodies == 0 {
			t.Errorf("%s: stats = %+v", r.name, r.stats)
		}
	}
}

func TestRunBatch_SceneDuration(t *testing.T) {
	c := testConfig()
	c.Duration = 0

	timed, err := scene.Generate("default", 4, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	timed.Duration = 0.02

	results, err := runBatch(context.Background(), c, []batchJob{{name: "timed.yaml", scene: timed}})
	if err != nil {
		t.Fatalf("runBatch: %v", err)
	}
	// 0.02s at 1000 fps: the initial frame plus 20 more.
	if got := results[0].frames; got != 21 {
		t.Errorf("frames = %d, want 21", got)
	}

	untimed, err := scene.Generate("default", 4, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	_, err = runBatch(context.Background(), c, []batchJob{{name: "untimed.yaml", scene: untimed}})
	if !errors.Is(err, errNoDuration) {
		t.Errorf("err = %v, want errNoDuration", err)
	}
}

func TestRunBatch_Cancelled(t *testing.T) {
	c := testConfig()
	c.Batch = 2
	c.Duration = 1000

	jobs, err := batchJobs(c, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := runBatch(ctx, c, jobs); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestEngine_RunsForDuration(t *testing.T) {
	world := physics.NewWorld(physics.DefaultConfig())
	node := physics.NewNode(geom.Zero)
	body, err := physics.NewKinematicBody(node, physics.NewCircleCollider(node, 5), physics.DefaultBodyProps())
	if err != nil {
		t.Fatal(err)
	}
	world.AddBody(body)

	var buf bytes.Buffer
	engine := NewEngine(world, 1000, 0.01)
	engine.SetRecorder(record.NewRecorder(&buf))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := engine.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	s := engine.Stats()
	if s.Frames != 11 || math.Abs(s.SimTime-0.01) > 1e-9 {
		t.Errorf("frames = %d sim = %v, want 11 frames and 0.01s", s.Frames, s.SimTime)
	}
	if s.World.Steps != 10 {
		t.Errorf("steps = %d, want 10", s.World.Steps)
	}

	frames, err := record.ReadAll(&buf)
	if err != nil || len(frames) != 11 {
		t.Errorf("recorded %d frames, err %v", len(frames), err)
	}
}

func TestEngine_ReloadKeepsLatestWorld(t *testing.T) {
	engine := NewEngine(physics.NewWorld(physics.DefaultConfig()), 60, 0)
	first := physics.NewWorld(physics.DefaultConfig())
	second := physics.NewWorld(physics.DefaultConfig())

	engine.Reload(first)
	engine.Reload(second)

	if got := <-engine.reload; got != second {
		t.Error("pending reload is not the latest world")
	}
}

func TestEngine_RejectsConcurrentRun(t *testing.T) {
	engine := NewEngine(physics.NewWorld(physics.DefaultConfig()), 60, 0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for engine.Stats().Frames == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := engine.Run(ctx); !errors.Is(err, errAlreadyRunning) {
		t.Errorf("second Run: err = %v", err)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run after cancel: err = %v", err)
	}
}
