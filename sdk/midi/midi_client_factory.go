package midi

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/aurora-melody/sdk/internal/midi/mididarwin"
	"github.com/aurora-melody/sdk/internal/midi/midiwindows"
	"github.com/aurora-melody/sdk/sdk/contracts"
)

// ErrUnsupportedOS is returned on platforms without a capture backend.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// clientInitializers maps GOOS to its capture backend.
var clientInitializers = map[string]func(*contracts.ClientOptions) (contracts.ClientMIDI, error){
	"darwin":  mididarwin.NewMIDIClient,
	"windows": midiwindows.NewMIDIClient,
}

// NewClient picks the backend for runtime.GOOS.
func NewClient(opts *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	return newClientFor(runtime.GOOS, opts)
}

func newClientFor(goos string, opts *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	if initializer, ok := clientInitializers[goos]; ok {
		return initializer(opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, goos)
}
