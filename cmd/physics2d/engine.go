package main

import (
	"context"
	"errors"
	"iter"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/0x5844/rigid2d/internal/record"
	"github.com/0x5844/rigid2d/physics"
)

var errAlreadyRunning = errors.New("engine already running")

// Engine drives a World in real time: every ticker tick advances a FrameClock
// by one frame and pulls the next frame from World.Simulate.
type Engine struct {
	world     *physics.World
	targetFPS int
	duration  float64
	recorder  *record.Recorder
	reload    chan *physics.World
	running   int32

	mu           sync.Mutex
	stats        EngineStats
	lastFrame    time.Time
	frameTimeSum float64
}

type EngineStats struct {
	FPS          float64
	AvgFrameTime float64
	MinFrameTime float64
	MaxFrameTime float64
	Frames       int64
	SimTime      float64
	World        physics.Stats
}

// NewEngine returns an engine for world. A duration of 0 runs until the
// context is cancelled.
func NewEngine(world *physics.World, fps int, duration float64) *Engine {
	return &Engine{
		world:     world,
		targetFPS: fps,
		duration:  duration,
		reload:    make(chan *physics.World, 1),
	}
}

func (e *Engine) SetRecorder(r *record.Recorder) {
	e.recorder = r
}

// Reload swaps in a new world at the next frame boundary. Only the most
// recent pending world is kept.
func (e *Engine) Reload(w *physics.World) {
	for {
		select {
		case e.reload <- w:
			return
		default:
		}
		select {
		case <-e.reload:
		default:
		}
	}
}

func (e *Engine) frames(clock *physics.FrameClock) (func() (physics.Frame, bool), func()) {
	duration := e.duration
	if duration <= 0 {
		duration = math.Inf(1)
	}
	return iter.Pull(e.world.Simulate(clock, duration))
}

func (e *Engine) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&e.running, 0, 1) {
		return errAlreadyRunning
	}
	defer atomic.StoreInt32(&e.running, 0)

	ticker := time.NewTicker(time.Second / time.Duration(e.targetFPS))
	defer ticker.Stop()

	clock := physics.NewFrameClock(float64(e.targetFPS))
	next, stop := e.frames(clock)
	defer func() { stop() }()

	e.mu.Lock()
	e.lastFrame = time.Now()
	e.mu.Unlock()

	for {
		select {
		case <-ticker.C:
			start := time.Now()

			frame, ok := next()
			if !ok {
				return nil
			}
			if e.recorder != nil {
				if err := e.recorder.Record(e.world, frame); err != nil {
					return err
				}
			}
			clock.Tick()

			e.updateStats(start, frame)

		case w := <-e.reload:
			stop()
			e.world = w
			clock = physics.NewFrameClock(float64(e.targetFPS))
			next, stop = e.frames(clock)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (e *Engine) updateStats(frameStart time.Time, frame physics.Frame) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	frameTime := now.Sub(e.lastFrame).Seconds()
	currentFrameTime := now.Sub(frameStart).Seconds()

	if frameTime > 0 {
		e.stats.FPS = 1.0 / frameTime
	}
	e.lastFrame = now
	e.stats.Frames++
	e.stats.SimTime = frame.Time

	e.frameTimeSum += currentFrameTime
	e.stats.AvgFrameTime = e.frameTimeSum / float64(e.stats.Frames)

	if e.stats.MinFrameTime == 0 || currentFrameTime < e.stats.MinFrameTime {
		e.stats.MinFrameTime = currentFrameTime
	}
	if currentFrameTime > e.stats.MaxFrameTime {
		e.stats.MaxFrameTime = currentFrameTime
	}

	e.stats.World = e.world.Stats()
}

// Stats is safe to call while Run is active. Frame times are in seconds.
func (e *Engine) Stats() EngineStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}
