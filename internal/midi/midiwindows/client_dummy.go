//go:build !windows

package midiwindows

import (
	"errors"

	"github.com/aurora-melody/sdk/sdk/contracts"
)

// ErrUnavailable is returned by every device call off Windows.
var ErrUnavailable = errors.New("WinMM MIDI input is only available on Windows")

type dummyMIDIClient struct {
	logger contracts.Logger
}

// NewMIDIClient returns a client whose device calls fail with ErrUnavailable.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Debug("WinMM unavailable, using dummy client")
	return &dummyMIDIClient{logger: options.Logger}, nil
}

func (m *dummyMIDIClient) ListDevices() ([]contracts.DeviceInfo, error) {
	return nil, ErrUnavailable
}

func (m *dummyMIDIClient) SelectDevice(int) error {
	return ErrUnavailable
}

func (m *dummyMIDIClient) StartCapture(chan contracts.MIDI) {
	m.logger.Warn("StartCapture called on dummy WinMM client")
}

func (m *dummyMIDIClient) Stop() error {
	return nil
}
