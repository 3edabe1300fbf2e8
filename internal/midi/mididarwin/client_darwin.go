//go:build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/youpy/go-coremidi"

	"github.com/aurora-melody/sdk/internal/midi/wire"
	"github.com/aurora-melody/sdk/sdk/contracts"
)

// Capture errors.
var (
	ErrNoMIDIDevices       = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice   = errors.New("invalid MIDI device")
	ErrMIDIConnectionError = errors.New("error connecting to MIDI device")
	ErrCreateInputPort     = errors.New("error creating input port")
)

type portConnection interface {
	Disconnect()
}

// ClientMid records from a CoreMIDI source.
type ClientMid struct {
	logger    contracts.Logger
	events    atomic.Pointer[chan contracts.MIDI]
	client    coremidi.Client
	inputPort coremidi.InputPort
	portConn  portConnection
	filter    *contracts.MIDIEventFilter
	mu        sync.Mutex
	inflight  sync.WaitGroup
}

// NewMIDIClient creates the CoreMIDI client named in options.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	client, err := coremidi.NewClient(options.CoreMIDIConfig.ClientName)
	if err != nil {
		return nil, err
	}
	options.Logger.Info("CoreMIDI client created", options.Logger.Field().String("name", options.CoreMIDIConfig.ClientName))

	return &ClientMid{
		logger: options.Logger,
		client: client,
		filter: options.MIDIEventFilter,
	}, nil
}

// ListDevices returns the CoreMIDI sources a performance can be recorded from.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("list MIDI sources: %w", err)
	}
	if len(sources) == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, len(sources))
	for i, source := range sources {
		entity := source.Entity()
		devices[i] = contracts.DeviceInfo{
			Name:         source.Name(),
			EntityName:   entity.Name(),
			Manufacturer: entity.Manufacturer(),
		}
	}
	return devices, nil
}

// SelectDevice connects to the source at deviceID, replacing any previous one.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources, err := coremidi.AllSources()
	if err != nil {
		return fmt.Errorf("list MIDI sources: %w", err)
	}
	if deviceID < 0 || deviceID >= len(sources) {
		m.logger.Error(ErrInvalidMIDIDevice.Error(), m.logger.Field().Int("deviceID", deviceID))
		return fmt.Errorf("%w: %d", ErrInvalidMIDIDevice, deviceID)
	}
	m.disconnect()

	source := sources[deviceID]
	m.inputPort, err = coremidi.NewInputPort(m.client, "Aurora Input", m.handlePacket)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreateInputPort, err)
	}
	m.portConn, err = m.inputPort.Connect(source)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMIDIConnectionError, err)
	}

	m.logger.Info("MIDI device connected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", source.Name()))
	return nil
}

// handlePacket runs on the CoreMIDI thread. Events never block it: when the
// receiver falls behind they are dropped with a warning.
func (m *ClientMid) handlePacket(_ coremidi.Source, packet coremidi.Packet) {
	m.inflight.Add(1)
	defer m.inflight.Done()

	ch := m.events.Load()
	if ch == nil {
		return
	}

	events, err := wire.Decode(packet.Data, uint64(time.Now().UnixNano()))
	if err != nil {
		m.logger.Warn("malformed MIDI packet", m.logger.Field().Error("error", err))
	}
	for _, e := range events {
		if !m.filter.Allows(e.Command) {
			continue
		}
		select {
		case *ch <- e:
		default:
			m.logger.Warn("event buffer full, dropping MIDI event", m.logger.Field().Uint8("note", e.Note))
		}
	}
}

// StartCapture sends decoded events to eventChannel until Stop.
func (m *ClientMid) StartCapture(eventChannel chan contracts.MIDI) {
	if eventChannel == nil {
		m.logger.Error("StartCapture called with nil channel")
		return
	}
	if m.events.Swap(&eventChannel) != nil {
		m.logger.Warn("capture restarted on a new channel")
	}
	m.logger.Info("MIDI capture started")
}

// Stop disconnects the source and waits for in-flight packets. The event
// channel is left open for the caller to close.
func (m *ClientMid) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events.Store(nil)
	m.disconnect()
	m.inflight.Wait()
	m.logger.Info("MIDI capture stopped")
	return nil
}

func (m *ClientMid) disconnect() {
	if m.portConn != nil {
		m.portConn.Disconnect()
		m.portConn = nil
	}
}
