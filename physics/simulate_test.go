package physics

import (
	"math"
	"testing"
)

func TestSimulate_YieldsEveryFrame(t *testing.T) {
	w := NewWorld(weightless())
	clock := NewFrameClock(60)

	frames := 0
	for frame := range w.Simulate(clock, 1) {
		if frame.Index != frames {
			t.Fatalf("frame index = %d, want %d", frame.Index, frames)
		}
		if frame.Steps > 10 {
			t.Errorf("frame %d ran %d sub-steps, want at most 10", frame.Index, frame.Steps)
		}
		frames++
		clock.Tick()
	}

	if frames != 61 {
		t.Errorf("got %d frames, want 61", frames)
	}
	if math.Abs(w.Time()-1) > 1e-6 {
		t.Errorf("simulated %v seconds, want 1", w.Time())
	}
}

func TestSimulate_ConsumerCanStop(t *testing.T) {
	w := NewWorld(weightless())
	clock := NewFrameClock(60)

	for frame := range w.Simulate(clock, 10) {
		if frame.Index == 3 {
			if math.Abs(frame.Time-3.0/60) > 1e-9 {
				t.Errorf("frame time = %v, want %v", frame.Time, 3.0/60)
			}
			break
		}
		clock.Tick()
	}
	if math.Abs(w.Time()-3.0/60) > 1e-9 {
		t.Errorf("simulated %v seconds after stopping, want %v", w.Time(), 3.0/60)
	}
}

func TestSimulate_ZeroDuration(t *testing.T) {
	w := NewWorld(weightless())
	for range w.Simulate(NewFrameClock(60), 0) {
		t.Fatal("zero duration yielded a frame")
	}
}

func TestSimulate_CatchesUpSlowFrames(t *testing.T) {
	w := NewWorld(weightless())
	clock := NewFrameClock(10)

	for frame := range w.Simulate(clock, 0.2) {
		if frame.Index > 0 && frame.Steps != 60 {
			t.Errorf("frame %d ran %d sub-steps, want 60", frame.Index, frame.Steps)
		}
		clock.Tick()
	}
}
