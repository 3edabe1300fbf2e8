// Package builtin holds the generator plugins that ship with the SDK. They
// are served by the example binaries and listed by the preview tool.
package builtin

import (
	"math/rand/v2"
	"time"

	"github.com/aurora-melody/sdk/sdk/contracts"
)

// Author is the author reported by every built-in plugin.
const Author = "Aurora Melody Labs"

// NewRand returns a generator seeded from the clock.
func NewRand() *rand.Rand {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

// All returns one instance of each built-in plugin, sharing rng.
func All(rng *rand.Rand) []contracts.Plugin {
	return []contracts.Plugin{
		NewArpeggiator(rng),
		NewRandomMelody(rng),
		NewChordProgression(rng),
	}
}

// noteLengths maps the note-length choices to beats.
var noteLengths = map[string]float64{
	"1/32": 0.125,
	"1/16": 0.25,
	"1/8":  0.5,
	"1/4":  1,
	"1/2":  2,
}

func lengthOf(choice string, def float64) float64 {
	if l, ok := noteLengths[choice]; ok {
		return l
	}
	return def
}

func orRand(rng *rand.Rand) *rand.Rand {
	if rng == nil {
		return NewRand()
	}
	return rng
}
