// Package wire turns raw MIDI bytes from the OS drivers into capture events.
package wire

import (
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2"

	"github.com/aurora-melody/sdk/sdk/contracts"
)

// ErrIncompletePacket is returned when a packet ends inside a message.
var ErrIncompletePacket = errors.New("incomplete MIDI packet")

// Decode splits a packet into channel voice events. A packet may carry several
// messages and use running status. Realtime bytes, system common messages and
// SysEx are skipped. Events decoded before a truncated message are returned
// along with ErrIncompletePacket.
func Decode(data []byte, timestamp uint64) ([]contracts.MIDI, error) {
	var events []contracts.MIDI
	var running byte

	for i := 0; i < len(data); {
		b := data[i]
		switch {
		case b >= 0xF8:
			i++
			continue
		case b >= 0xF0:
			running = 0
			i += systemLength(data[i:])
			continue
		case b >= 0x80:
			running = b
			i++
		case running == 0:
			i++
			continue
		}

		n := dataLength(running)
		if i+n > len(data) {
			return events, fmt.Errorf("%w: status 0x%X needs %d data bytes, %d left", ErrIncompletePacket, running, n, len(data)-i)
		}
		msg := midi.Message(append([]byte{running}, data[i:i+n]...))
		events = append(events, event(msg, timestamp))
		i += n
	}
	return events, nil
}

// ShortMessage unpacks a message packed little endian into a word, the way
// the Windows multimedia API delivers it.
func ShortMessage(packed uint32) []byte {
	status := byte(packed)
	if status < 0x80 || status >= 0xF0 {
		return nil
	}
	data := []byte{status, byte(packed >> 8), byte(packed >> 16)}
	return data[:1+dataLength(status)]
}

func event(msg midi.Message, timestamp uint64) contracts.MIDI {
	e := contracts.MIDI{
		Timestamp: timestamp,
		Command:   msg[0] & 0xF0,
	}
	msg.GetChannel(&e.Channel)

	var ch uint8
	switch {
	case msg.GetNoteOn(&ch, &e.Note, &e.Velocity):
	case msg.GetNoteOff(&ch, &e.Note, &e.Velocity):
	default:
		e.Note = msg[1]
		if len(msg) > 2 {
			e.Velocity = msg[2]
		}
	}
	return e
}

// dataLength is the number of data bytes after a channel status byte.
func dataLength(status byte) int {
	switch status & 0xF0 {
	case 0xC0, 0xD0:
		return 1
	default:
		return 2
	}
}

// systemLength is the size of the system message starting data.
func systemLength(data []byte) int {
	switch data[0] {
	case 0xF0:
		for i := 1; i < len(data); i++ {
			if data[i] == 0xF7 {
				return i + 1
			}
		}
		return len(data)
	case 0xF1, 0xF3:
		return min(2, len(data))
	case 0xF2:
		return min(3, len(data))
	default:
		return 1
	}
}
