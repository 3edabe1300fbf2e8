package contracts

// MIDI is a channel voice event captured from an input device.
type MIDI struct {
	Timestamp uint64 // Capture time in nanoseconds since the Unix epoch.
	Command   byte   // Status nibble, e.g. 0x90 for Note On.
	Channel   byte   // Zero-based channel (0-15).
	Note      byte   // MIDI note number (0-127).
	Velocity  byte   // Strength of the note (0-127).
}

// IsNoteOn reports a Note On with non-zero velocity.
func (m MIDI) IsNoteOn() bool {
	return m.Command == byte(NoteOn) && m.Velocity > 0
}

// IsNoteOff reports a Note Off, including the Note On with velocity 0 form.
func (m MIDI) IsNoteOff() bool {
	return m.Command == byte(NoteOff) || (m.Command == byte(NoteOn) && m.Velocity == 0)
}

// ClientMIDI captures events from a MIDI input device.
type ClientMIDI interface {
	Stop() error                         // Stops capturing and releases the device.
	ListDevices() ([]DeviceInfo, error)  // Lists all available MIDI inputs.
	SelectDevice(deviceID int) error     // Opens an input by its index in ListDevices.
	StartCapture(eventChannel chan MIDI) // Starts sending captured events to eventChannel.
}
