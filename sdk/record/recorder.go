// Package record turns a live stream of captured MIDI events into notes
// that can be quantized, exported or handed back to the piano roll.
package record

import (
	"context"
	"slices"
	"sync"

	"github.com/aurora-melody/sdk/internal/logger"
	"github.com/aurora-melody/sdk/sdk/contracts"
	"github.com/aurora-melody/sdk/sdk/melody"
	"github.com/aurora-melody/sdk/sdk/note"
)

// Options configures a Recorder.
type Options struct {
	TempoBPM  float64
	StartBeat float64 // beat of the first captured event
	Grid      float64 // quantize resolution applied by Notes; 0 keeps raw timing
	Logger    contracts.Logger
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithTempo sets the tempo used to convert time to beats.
func WithTempo(bpm float64) Option {
	return func(o *Options) {
		o.TempoBPM = bpm
	}
}

// WithStartBeat places the first event at beat.
func WithStartBeat(beat float64) Option {
	return func(o *Options) {
		o.StartBeat = beat
	}
}

// WithGrid quantizes starts and lengths to resolution beats.
func WithGrid(resolution float64) Option {
	return func(o *Options) {
		o.Grid = resolution
	}
}

// WithLogger sets the logger.
func WithLogger(l contracts.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

type key struct {
	channel, note byte
}

type held struct {
	at       uint64
	velocity byte
}

// Recorder pairs Note On and Note Off events into notes. Timing is relative to
// the first event it sees. It is safe for concurrent use.
type Recorder struct {
	opts Options

	mu      sync.Mutex
	started bool
	origin  uint64
	last    uint64
	held    map[key]held
	notes   []note.MidiNote
}

// New creates a Recorder at 120 BPM unless told otherwise.
func New(opts ...Option) *Recorder {
	o := Options{TempoBPM: 120}
	for _, opt := range opts {
		opt(&o)
	}
	if o.TempoBPM <= 0 {
		o.TempoBPM = 120
	}
	if o.Logger == nil {
		o.Logger = logger.NewNopLogger()
	}
	return &Recorder{opts: o, held: map[key]held{}}
}

// Handle records one event. Events other than notes are ignored. A second
// Note On for a held key ends the first note.
func (r *Recorder) Handle(e contracts.MIDI) {
	if !e.IsNoteOn() && !e.IsNoteOff() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		r.started, r.origin = true, e.Timestamp
	}
	r.last = max(r.last, e.Timestamp)

	k := key{channel: e.Channel, note: e.Note}
	if h, ok := r.held[k]; ok {
		delete(r.held, k)
		r.finish(k, h, e.Timestamp)
	}
	if e.IsNoteOn() {
		r.held[k] = held{at: e.Timestamp, velocity: e.Velocity}
	}
}

// Run records events until the channel is closed or ctx is done, then ends
// any held notes at the last event time.
func (r *Recorder) Run(ctx context.Context, events <-chan contracts.MIDI) error {
	defer r.Flush()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				return nil
			}
			r.Handle(e)
		}
	}
}

// Flush ends held notes at the time of the latest event.
func (r *Recorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, h := range r.held {
		r.finish(k, h, r.last)
	}
	clear(r.held)
}

// Notes returns the finished notes ordered by start, quantized when a grid is set.
func (r *Recorder) Notes() []note.MidiNote {
	r.mu.Lock()
	notes := slices.Clone(r.notes)
	r.mu.Unlock()

	slices.SortStableFunc(notes, func(a, b note.MidiNote) int {
		switch {
		case a.StartBeat < b.StartBeat:
			return -1
		case a.StartBeat > b.StartBeat:
			return 1
		}
		return a.NoteNumber - b.NoteNumber
	})
	if r.opts.Grid > 0 {
		notes = melody.QuantizeNotes(notes, r.opts.Grid, true)
	}
	return notes
}

// Reset discards everything recorded. The next event becomes the new origin.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started, r.origin, r.last = false, 0, 0
	clear(r.held)
	r.notes = nil
}

// beat converts a timestamp to a beat. Timestamps before the origin (events
// delivered out of order) land on the origin.
func (r *Recorder) beat(ts uint64) float64 {
	seconds := float64(max(ts, r.origin)-r.origin) / 1e9
	return r.opts.StartBeat + seconds*r.opts.TempoBPM/60
}

func (r *Recorder) finish(k key, h held, end uint64) {
	start := r.beat(h.at)
	length := r.beat(max(end, h.at)) - start
	n, err := note.New(int(k.note), max(0, start), max(melody.MinLength, length), int(h.velocity), int(k.channel)+1)
	if err != nil {
		r.opts.Logger.Warn("dropping captured note", r.opts.Logger.Field().Error("error", err))
		return
	}
	r.notes = append(r.notes, n)
	r.opts.Logger.Debug("captured", r.opts.Logger.Field().String("note", n.Name()), r.opts.Logger.Field().Float64("start", n.StartBeat))
}
