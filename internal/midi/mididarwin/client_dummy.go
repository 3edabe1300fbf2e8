//go:build !darwin

package mididarwin

import (
	"errors"

	"github.com/aurora-melody/sdk/sdk/contracts"
)

// ErrUnavailable is returned by every device call off macOS.
var ErrUnavailable = errors.New("CoreMIDI is only available on macOS")

// DummyMIDIClient stands in for the CoreMIDI client on other platforms.
type DummyMIDIClient struct {
	logger contracts.Logger
}

func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Debug("CoreMIDI unavailable, using dummy client")
	return &DummyMIDIClient{logger: options.Logger}, nil
}

func (m *DummyMIDIClient) ListDevices() ([]contracts.DeviceInfo, error) {
	return nil, ErrUnavailable
}

func (m *DummyMIDIClient) SelectDevice(int) error {
	return ErrUnavailable
}

func (m *DummyMIDIClient) StartCapture(chan contracts.MIDI) {
	m.logger.Warn("StartCapture called on dummy CoreMIDI client")
}

func (m *DummyMIDIClient) Stop() error {
	return nil
}
