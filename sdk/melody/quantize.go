package melody

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/aurora-melody/sdk/sdk/note"
)

// MinLength is the shortest length, in beats, a post-processor will produce.
const MinLength = 0.01

// Common grid resolutions in beats.
const (
	Grid64th    = 0.0625
	Grid32nd    = 0.125
	Grid16th    = 0.25
	Grid8th     = 0.5
	GridQuarter = 1.0
	GridHalf    = 2.0
	GridWhole   = 4.0
)

// QuantizeBeat snaps value to the nearest multiple of resolution.
// Ties round half up (toward +Inf): 0.125 on a 0.25 grid becomes 0.25.
// A non-positive resolution returns value unchanged.
func QuantizeBeat(value, resolution float64) float64 {
	if resolution <= 0 {
		return value
	}
	return math.Floor(value/resolution+0.5) * resolution
}

// QuantizeNotes snaps every start to the grid, and every length too when
// quantizeLength is set. Quantized lengths never drop below one grid step.
func QuantizeNotes(notes []note.MidiNote, resolution float64, quantizeLength bool) []note.MidiNote {
	out := make([]note.MidiNote, len(notes))
	for i, n := range notes {
		n.StartBeat = max(0, QuantizeBeat(n.StartBeat, resolution))
		if quantizeLength && resolution > 0 {
			n.LengthBeats = max(resolution, QuantizeBeat(n.LengthBeats, resolution))
		}
		out[i] = n
	}
	return out
}

// HumanizeConfig bounds the random offsets applied by Humanize.
type HumanizeConfig struct {
	Timing   float64 // max start offset in beats
	Velocity int     // max velocity offset
	Length   float64 // max length offset in beats
}

// DefaultHumanizeConfig is a subtle timing and velocity wobble.
func DefaultHumanizeConfig() HumanizeConfig {
	return HumanizeConfig{Timing: 0.02, Velocity: 10}
}

// Humanize adds independent uniform noise to start, velocity and length of
// every note. The result keeps the input order and count; starts stay
// non-negative, velocities stay in 0-127 and lengths stay at least MinLength.
func Humanize(rng *rand.Rand, notes []note.MidiNote, cfg HumanizeConfig) []note.MidiNote {
	timing := math.Abs(cfg.Timing)
	velocity := abs(cfg.Velocity)
	length := math.Abs(cfg.Length)

	out := make([]note.MidiNote, len(notes))
	for i, n := range notes {
		n.StartBeat = max(0, n.StartBeat+uniform(rng, timing))
		n.Velocity = clampVelocity(n.Velocity + rng.IntN(2*velocity+1) - velocity)
		n.LengthBeats = max(MinLength, n.LengthBeats+uniform(rng, length))
		out[i] = n
	}
	return out
}

// uniform draws from [-bound, bound].
func uniform(rng *rand.Rand, bound float64) float64 {
	return (rng.Float64()*2 - 1) * bound
}

// RemoveOverlaps makes each channel monophonic. A note still sounding when the
// next note on its channel starts is cut to end there; if that leaves it with
// no length (both start together) it is dropped. A block chord on one channel
// therefore keeps only the note that comes last in input order. Put chord
// voices on separate channels to keep them. Channels never affect each other
// and the result is ordered by start beat.
func RemoveOverlaps(notes []note.MidiNote) []note.MidiNote {
	if len(notes) == 0 {
		return nil
	}

	sorted := slices.Clone(notes)
	slices.SortStableFunc(sorted, func(a, b note.MidiNote) int {
		switch {
		case a.StartBeat < b.StartBeat:
			return -1
		case a.StartBeat > b.StartBeat:
			return 1
		}
		return 0
	})

	dropped := make([]bool, len(sorted))
	last := make(map[int]int) // channel -> index of the latest kept note
	for i, n := range sorted {
		if j, ok := last[n.Channel]; ok {
			prev := sorted[j]
			if prev.EndBeat() > n.StartBeat {
				if trimmed := n.StartBeat - prev.StartBeat; trimmed > 0 {
					sorted[j].LengthBeats = trimmed
				} else {
					dropped[j] = true
				}
			}
		}
		last[n.Channel] = i
	}

	out := make([]note.MidiNote, 0, len(sorted))
	for i, n := range sorted {
		if !dropped[i] {
			out = append(out, n)
		}
	}
	return out
}
