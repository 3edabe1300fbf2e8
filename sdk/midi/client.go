// Package midi opens the platform MIDI input used to record performances
// into notes. See the record package for turning events into notes.
package midi

import (
	"github.com/aurora-melody/sdk/sdk/contracts"
)

// NewMIDIClient creates the capture client for the current OS.
//
//	client, err := midi.NewMIDIClient(
//		contracts.WithMIDIEventFilter(contracts.MIDIEventFilter{
//			Commands: []contracts.MIDICommand{contracts.NoteOn, contracts.NoteOff},
//		}),
//	)
func NewMIDIClient(opts ...contracts.Option) (contracts.ClientMIDI, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	return NewClient(&options)
}
