package physics

import "iter"

// timeEpsilon absorbs rounding left over from splitting a frame into
// sub-steps.
const timeEpsilon = 1e-9

// Clock reports the host's current time in seconds.
type Clock interface {
	Now() float64
}

// FrameClock is a Clock that only moves when the host calls Tick.
type FrameClock struct {
	now   float64
	frame float64
}

func NewFrameClock(fps float64) *FrameClock {
	if fps <= 0 {
		fps = 60
	}
	return &FrameClock{frame: 1 / fps}
}

func (c *FrameClock) Now() float64 {
	return c.now
}

// Tick advances the clock by one frame and returns the new time.
func (c *FrameClock) Tick() float64 {
	c.now += c.frame
	return c.now
}

func (c *FrameClock) FrameDuration() float64 {
	return c.frame
}

// Frame is yielded once per host frame by Simulate.
type Frame struct {
	Index int
	// Time is the simulated time since Simulate started.
	Time float64
	// Steps is the number of sub-steps run to catch up to the clock.
	Steps int
}

// Simulate returns a sequence that, on each iteration, runs sub-steps until
// the simulation has caught up with clock and then yields a Frame. It ends
// once duration seconds of host time have been simulated or the consumer
// stops ranging. The host advances clock between frames.
func (w *World) Simulate(clock Clock, duration float64) iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		start := clock.Now()
		simulated := start

		for index := 0; duration-(simulated-start) > timeEpsilon; index++ {
			steps := 0
			now := clock.Now()
			for now-simulated > timeEpsilon {
				left := w.Advance(now - simulated)
				simulated = now - left
				steps++
			}

			frame := Frame{Index: index, Time: simulated - start, Steps: steps}
			if !yield(frame) {
				return
			}
		}
	}
}
