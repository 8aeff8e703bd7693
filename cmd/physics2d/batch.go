package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/0x5844/rigid2d/physics"
	"github.com/0x5844/rigid2d/scene"
)

var errNoDuration = errors.New("no duration set by flag or scene")

// batchJob is one independent simulation. Each job owns its World, so jobs
// run in parallel while every World stays single-threaded.
type batchJob struct {
	name  string
	scene *scene.Config
}

type batchResult struct {
	name    string
	frames  int
	elapsed time.Duration
	stats   physics.Stats
}

func batchJobs(config *Config, files []string) ([]batchJob, error) {
	var jobs []batchJob
	for _, file := range files {
		cfg, err := scene.Load(file)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, batchJob{name: file, scene: cfg})
	}

	for i := 0; i < config.Batch; i++ {
		seed := config.Seed + int64(i)
		cfg, err := scene.Generate(config.SceneType, config.BodiesCount, rand.New(rand.NewSource(seed)))
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, batchJob{name: fmt.Sprintf("%s#%d", config.SceneType, seed), scene: cfg})
	}
	return jobs, nil
}

// runBatch simulates every job as fast as possible, at most workers at a
// time. A scene's own duration takes precedence over the -duration flag.
func runBatch(ctx context.Context, config *Config, jobs []batchJob) ([]batchResult, error) {
	results := make([]batchResult, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)

	for i, job := range jobs {
		g.Go(func() error {
			world, err := buildWorld(job.scene, config)
			if err != nil {
				return fmt.Errorf("%s: %w", job.name, err)
			}

			duration := config.Duration
			if job.scene.Duration > 0 {
				duration = job.scene.Duration
			}
			if duration <= 0 {
				return fmt.Errorf("%s: %w", job.name, errNoDuration)
			}

			start := time.Now()
			frames, err := simulateHeadless(ctx, world, config.MaxFPS, duration)
			if err != nil {
				return fmt.Errorf("%s: %w", job.name, err)
			}

			results[i] = batchResult{
				name:    job.name,
				frames:  frames,
				elapsed: time.Since(start),
				stats:   world.Stats(),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func simulateHeadless(ctx context.Context, world *physics.World, fps int, duration float64) (int, error) {
	clock := physics.NewFrameClock(float64(fps))
	frames := 0
	for range world.Simulate(clock, duration) {
		if err := ctx.Err(); err != nil {
			return frames, err
		}
		frames++
		clock.Tick()
	}
	return frames, nil
}

func reportBatch(results []batchResult) {
	for _, r := range results {
		log.Printf("%s: %d frames in %v | Bodies: %d | Sleeping: %d | Steps: %d | Collisions: %d | Removed: %d",
			r.name, r.frames, r.elapsed.Round(time.Millisecond),
			r.stats.Bodies, r.stats.Sleeping, r.stats.Steps, r.stats.Collisions, r.stats.Removed)
	}
}
