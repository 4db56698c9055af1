// Package trace records the simulation as a stream of msgpack frames
// compressed with zstd, for replay by external renderers.
package trace

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	log "github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/a-bouts/sail-sim/boat"
	"github.com/a-bouts/sail-sim/control"
	"github.com/a-bouts/sail-sim/race"
)

type Frame struct {
	Tick      uint64        `msgpack:"tick"`
	Elapsed   float64       `msgpack:"elapsed"` // s
	Boat      boat.State    `msgpack:"boat"`
	Course    race.Snapshot `msgpack:"course"`
	Algorithm control.Info  `msgpack:"algorithm"`
}

type Recorder struct {
	zw     *zstd.Encoder
	enc    *msgpack.Encoder
	closer io.Closer
	frames int
}

func NewRecorder(w io.Writer) (*Recorder, error) {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithZeroFrames(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %w", err)
	}
	return &Recorder{zw: zw, enc: msgpack.NewEncoder(zw)}, nil
}

// Create records into a new file at path.
func Create(path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	r, err := NewRecorder(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	log.WithField("trace", path).Info("Recording trace")
	return r, nil
}

func (r *Recorder) Record(f Frame) error {
	if err := r.enc.Encode(&f); err != nil {
		return fmt.Errorf("failed to encode frame %d: %w", f.Tick, err)
	}
	r.frames++
	return nil
}

func (r *Recorder) Frames() int {
	return r.frames
}

// Close flushes the stream, and closes the file when the recorder owns it.
func (r *Recorder) Close() error {
	if err := r.zw.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// ReadAll decodes every frame of a trace.
func ReadAll(r io.Reader) ([]Frame, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	dec := msgpack.NewDecoder(zr)
	var frames []Frame
	for {
		var f Frame
		if err := dec.Decode(&f); err != nil {
			if errors.Is(err, io.EOF) {
				return frames, nil
			}
			return frames, fmt.Errorf("failed to decode frame %d: %w", len(frames), err)
		}
		frames = append(frames, f)
	}
}

func ReadFile(path string) ([]Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAll(f)
}
