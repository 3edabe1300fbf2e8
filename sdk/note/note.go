package note

import (
	"errors"
	"fmt"

	"github.com/aurora-melody/sdk/sdk/theory"
)

// MIDI ranges accepted by New.
const (
	MinNumber   = 0
	MaxNumber   = 127
	MinVelocity = 0
	MaxVelocity = 127
	MinChannel  = 1
	MaxChannel  = 16
)

// ErrInvalidNote is returned when a note is constructed with out-of-range values.
var ErrInvalidNote = errors.New("invalid note")

// MidiNote is a single note on the piano roll.
//
// Values are treated as immutable: Transpose and Shift return new notes.
type MidiNote struct {
	NoteNumber  int     `json:"noteNumber"`  // MIDI note number (0-127), 60 = C4.
	StartBeat   float64 `json:"startBeat"`   // Start position in beats.
	LengthBeats float64 `json:"lengthBeats"` // Duration in beats.
	Velocity    int     `json:"velocity"`    // Loudness (0-127).
	Channel     int     `json:"channel"`     // MIDI channel (1-16).
}

// New builds a validated note. Out-of-range values are rejected, never clamped.
func New(number int, start, length float64, velocity, channel int) (MidiNote, error) {
	n := MidiNote{
		NoteNumber:  number,
		StartBeat:   start,
		LengthBeats: length,
		Velocity:    velocity,
		Channel:     channel,
	}
	if err := n.Validate(); err != nil {
		return MidiNote{}, err
	}
	return n, nil
}

// MustNew is like New but panics on invalid input. Intended for literals in tests and examples.
func MustNew(number int, start, length float64, velocity, channel int) MidiNote {
	n, err := New(number, start, length, velocity, channel)
	if err != nil {
		panic(err)
	}
	return n
}

// Validate reports whether every field is inside its MIDI range.
func (n MidiNote) Validate() error {
	switch {
	case n.NoteNumber < MinNumber || n.NoteNumber > MaxNumber:
		return fmt.Errorf("%w: note number %d out of range %d-%d", ErrInvalidNote, n.NoteNumber, MinNumber, MaxNumber)
	case n.StartBeat < 0:
		return fmt.Errorf("%w: negative start beat %g", ErrInvalidNote, n.StartBeat)
	case n.LengthBeats <= 0:
		return fmt.Errorf("%w: length %g must be positive", ErrInvalidNote, n.LengthBeats)
	case n.Velocity < MinVelocity || n.Velocity > MaxVelocity:
		return fmt.Errorf("%w: velocity %d out of range %d-%d", ErrInvalidNote, n.Velocity, MinVelocity, MaxVelocity)
	case n.Channel < MinChannel || n.Channel > MaxChannel:
		return fmt.Errorf("%w: channel %d out of range %d-%d", ErrInvalidNote, n.Channel, MinChannel, MaxChannel)
	}
	return nil
}

// EndBeat is the beat at which the note stops sounding.
func (n MidiNote) EndBeat() float64 {
	return n.StartBeat + n.LengthBeats
}

// Octave returns the octave number, C4 = octave 4.
func (n MidiNote) Octave() int {
	return n.NoteNumber/12 - 1
}

// PitchClass returns 0-11 where 0 = C.
func (n MidiNote) PitchClass() int {
	return n.NoteNumber % 12
}

// Name returns the sharp-spelled pitch name, e.g. "C4" or "F#5".
func (n MidiNote) Name() string {
	name, err := theory.FromMidi(n.NoteNumber)
	if err != nil {
		return fmt.Sprintf("?%d", n.NoteNumber)
	}
	return name
}

// Transpose returns a copy moved by semitones, pinned to 0-127.
func (n MidiNote) Transpose(semitones int) MidiNote {
	n.NoteNumber = min(MaxNumber, max(MinNumber, n.NoteNumber+semitones))
	return n
}

// Shift returns a copy moved by beats. The start never goes below zero.
func (n MidiNote) Shift(beats float64) MidiNote {
	n.StartBeat = max(0, n.StartBeat+beats)
	return n
}

// WithLength returns a copy with a new duration.
func (n MidiNote) WithLength(length float64) MidiNote {
	n.LengthBeats = length
	return n
}

// WithVelocity returns a copy with a new velocity.
func (n MidiNote) WithVelocity(velocity int) MidiNote {
	n.Velocity = velocity
	return n
}

func (n MidiNote) String() string {
	return fmt.Sprintf("MidiNote(%s, beat=%.2f, len=%.2f, vel=%d)", n.Name(), n.StartBeat, n.LengthBeats, n.Velocity)
}

// FromName builds a note on channel 1 from a pitch name such as "C4" or "Bb3".
func FromName(name string, start, length float64, velocity int) (MidiNote, error) {
	number, err := theory.ToMidi(name)
	if err != nil {
		return MidiNote{}, err
	}
	return New(number, start, length, velocity, MinChannel)
}
