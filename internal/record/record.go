// Package record writes per-frame world snapshots as a stream of msgpack
// values and reads them back.
package record

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/0x5844/rigid2d/physics"
)

type BodyState struct {
	Name            string  `msgpack:"name,omitempty"`
	Kind            string  `msgpack:"kind"`
	X               float64 `msgpack:"x"`
	Y               float64 `msgpack:"y"`
	Rotation        float64 `msgpack:"rot"`
	VelocityX       float64 `msgpack:"vx"`
	VelocityY       float64 `msgpack:"vy"`
	AngularVelocity float64 `msgpack:"av"`
	Sleeping        bool    `msgpack:"sleep"`
}

type Frame struct {
	Index      int         `msgpack:"index"`
	Time       float64     `msgpack:"time"`
	Steps      int         `msgpack:"steps"`
	Collisions int         `msgpack:"collisions"`
	Bodies     []BodyState `msgpack:"bodies"`
}

// Capture snapshots every body of world at frame.
func Capture(world *physics.World, frame physics.Frame) Frame {
	bodies := world.Bodies()
	out := Frame{
		Index:      frame.Index,
		Time:       frame.Time,
		Steps:      frame.Steps,
		Collisions: len(world.Collisions()),
		Bodies:     make([]BodyState, len(bodies)),
	}
	for i, b := range bodies {
		p, v := b.Position(), b.LinearVelocity()
		out.Bodies[i] = BodyState{
			Name:            b.Name(),
			Kind:            b.Kind().String(),
			X:               p.X,
			Y:               p.Y,
			Rotation:        b.Rotation(),
			VelocityX:       v.X,
			VelocityY:       v.Y,
			AngularVelocity: b.AngularVelocity(),
			Sleeping:        b.IsSleeping(),
		}
	}
	return out
}

type Recorder struct {
	enc    *msgpack.Encoder
	frames int
}

func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{enc: msgpack.NewEncoder(w)}
}

func (r *Recorder) Record(world *physics.World, frame physics.Frame) error {
	snapshot := Capture(world, frame)
	if err := r.enc.Encode(&snapshot); err != nil {
		return fmt.Errorf("record: frame %d: %w", frame.Index, err)
	}
	r.frames++
	return nil
}

// Frames is the number of frames written so far.
func (r *Recorder) Frames() int {
	return r.frames
}

// ReadAll decodes frames until r is exhausted. A stream that ends inside a
// frame is reported as io.ErrUnexpectedEOF.
func ReadAll(r io.Reader) ([]Frame, error) {
	br := bufio.NewReader(r)
	dec := msgpack.NewDecoder(br)
	var frames []Frame
	for {
		if _, err := br.Peek(1); err != nil {
			if errors.Is(err, io.EOF) {
				return frames, nil
			}
			return frames, fmt.Errorf("record: %w", err)
		}

		var f Frame
		if err := dec.Decode(&f); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return frames, fmt.Errorf("record: frame %d: %w", len(frames), err)
		}
		frames = append(frames, f)
	}
}
