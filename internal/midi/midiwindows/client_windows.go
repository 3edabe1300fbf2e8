//go:build windows

package midiwindows

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/aurora-melody/sdk/internal/midi/wire"
	"github.com/aurora-melody/sdk/sdk/contracts"
)

// Capture errors.
var (
	ErrNoMIDIDevices     = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
	ErrNoDeviceSelected  = errors.New("no MIDI device selected")
)

type hmidiin windows.Handle

const (
	callbackFunction = 0x00030000
	midiIOStatus     = 0x00000020
)

// midiInProc message ids.
const (
	mimOpen      = 0x3C1
	mimClose     = 0x3C2
	mimData      = 0x3C3
	mimError     = 0x3C5
	mimLongError = 0x3C6
	mimMoreData  = 0x3CC
)

type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

var (
	winmm                = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmm.NewProc("midiInOpen")
	procMidiInStart      = winmm.NewProc("midiInStart")
	procMidiInStop       = winmm.NewProc("midiInStop")
	procMidiInClose      = winmm.NewProc("midiInClose")

	// One callback for every client; the instance pointer picks the client.
	inputCallback = windows.NewCallback(midiInCallback)
)

// ClientMid records from a WinMM MIDI input.
type ClientMid struct {
	logger contracts.Logger
	events atomic.Pointer[chan contracts.MIDI]
	handle hmidiin
	open   bool
	mu     sync.Mutex
	filter *contracts.MIDIEventFilter
}

// NewMIDIClient creates a WinMM capture client.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Info("WinMM MIDI client created")
	return &ClientMid{
		logger: options.Logger,
		filter: options.MIDIEventFilter,
	}, nil
}

// ListDevices lists the MIDI inputs.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	count := uint32(r0)
	if count == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, count)
	for i := uint32(0); i < count; i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(uintptr(i), uintptr(unsafe.Pointer(&caps)), unsafe.Sizeof(caps))
		if r1 != 0 {
			m.logger.Warn("cannot read device capabilities", m.logger.Field().Int("deviceID", int(i)))
			continue
		}
		name := windows.UTF16ToString(caps.szPname[:])
		devices[i] = contracts.DeviceInfo{
			Name:         name,
			EntityName:   name,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		}
	}
	return devices, nil
}

// SelectDevice opens the input at deviceID, closing any previous one.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r0, _, _ := procMidiInGetNumDevs.Call()
	if deviceID < 0 || deviceID >= int(r0) {
		return fmt.Errorf("%w: %d", ErrInvalidMIDIDevice, deviceID)
	}
	if m.open {
		if err := m.close(); err != nil {
			return fmt.Errorf("close previous device: %w", err)
		}
	}

	r1, _, err := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&m.handle)),
		uintptr(deviceID),
		inputCallback,
		uintptr(unsafe.Pointer(m)),
		uintptr(callbackFunction|midiIOStatus),
	)
	if r1 != 0 {
		m.logger.Error("cannot open MIDI device", m.logger.Field().Int("deviceID", deviceID), m.logger.Field().Error("error", err))
		return fmt.Errorf("open MIDI device %d: %w", deviceID, err)
	}

	m.open = true
	m.logger.Info("MIDI device connected", m.logger.Field().Int("deviceID", deviceID))
	return nil
}

// StartCapture starts the input and sends decoded events to eventChannel.
func (m *ClientMid) StartCapture(eventChannel chan contracts.MIDI) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if eventChannel == nil {
		m.logger.Error("StartCapture called with nil channel")
		return
	}
	if !m.open {
		m.logger.Error(ErrNoDeviceSelected.Error())
		return
	}
	if m.events.Swap(&eventChannel) != nil {
		m.logger.Warn("capture restarted on a new channel")
		return
	}

	if r1, _, err := procMidiInStart.Call(uintptr(m.handle)); r1 != 0 {
		m.events.Store(nil)
		m.logger.Error("cannot start MIDI capture", m.logger.Field().Error("error", err))
		return
	}
	m.logger.Info("MIDI capture started")
}

func midiInCallback(_ uintptr, msg uint32, instance, param1, _ uintptr) uintptr {
	m := (*ClientMid)(unsafe.Pointer(instance))

	switch msg {
	case mimOpen, mimClose:
		m.logger.Debug("MIDI device state changed", m.logger.Field().Int("message", int(msg)))
	case mimData, mimMoreData:
		ch := m.events.Load()
		if ch == nil {
			return 0
		}
		events, err := wire.Decode(wire.ShortMessage(uint32(param1)), uint64(time.Now().UnixNano()))
		if err != nil {
			m.logger.Warn("malformed MIDI message", m.logger.Field().Error("error", err))
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
	case mimError, mimLongError:
		m.logger.Error("MIDI input error", m.logger.Field().Int("message", int(msg)))
	}
	return 0
}

// Stop halts capture and closes the device.
func (m *ClientMid) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events.Store(nil)
	if !m.open {
		return nil
	}
	if err := m.close(); err != nil {
		return fmt.Errorf("stop MIDI capture: %w", err)
	}
	m.logger.Info("MIDI capture stopped")
	return nil
}

func (m *ClientMid) close() error {
	if r1, _, err := procMidiInStop.Call(uintptr(m.handle)); r1 != 0 {
		return err
	}
	if r1, _, err := procMidiInClose.Call(uintptr(m.handle)); r1 != 0 {
		return err
	}
	m.open = false
	m.handle = 0
	return nil
}
