// Package export converts notes to and from Standard MIDI Files so generated
// material can be checked in any DAW.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/aurora-melody/sdk/sdk/note"
)

// ErrUnsupportedTimeFormat is returned for files timed in SMPTE frames.
var ErrUnsupportedTimeFormat = errors.New("only metric (ticks per quarter) time is supported")

// SMFConfig describes the file written by WriteSMF.
type SMFConfig struct {
	TempoBPM     float64
	TrackName    string
	TicksPerBeat uint16
	MeterNum     uint8
	MeterDenom   uint8
}

// DefaultSMFConfig is 120 BPM, 4/4, 960 ticks per beat.
func DefaultSMFConfig() SMFConfig {
	return SMFConfig{
		TempoBPM:     120,
		TrackName:    "Aurora Melody",
		TicksPerBeat: 960,
		MeterNum:     4,
		MeterDenom:   4,
	}
}

type event struct {
	tick uint32
	off  bool
	msg  midi.Message
}

// WriteSMF writes notes as a single-track format 0 file. Zero fields of cfg
// take the DefaultSMFConfig values. Velocity 0 is written as 1, since a
// Note On with velocity 0 means Note Off.
func WriteSMF(w io.Writer, notes []note.MidiNote, cfg SMFConfig) error {
	def := DefaultSMFConfig()
	if cfg.TempoBPM <= 0 {
		cfg.TempoBPM = def.TempoBPM
	}
	if cfg.TicksPerBeat == 0 {
		cfg.TicksPerBeat = def.TicksPerBeat
	}
	if cfg.MeterNum == 0 || cfg.MeterDenom == 0 {
		cfg.MeterNum, cfg.MeterDenom = def.MeterNum, def.MeterDenom
	}

	tpb := float64(cfg.TicksPerBeat)
	events := make([]event, 0, 2*len(notes))
	for i, n := range notes {
		if err := n.Validate(); err != nil {
			return fmt.Errorf("note %d: %w", i, err)
		}
		ch, key := uint8(n.Channel-1), uint8(n.NoteNumber)
		on := uint32(math.Round(n.StartBeat * tpb))
		off := max(on+1, uint32(math.Round(n.EndBeat()*tpb)))
		events = append(events,
			event{tick: on, msg: midi.NoteOn(ch, key, uint8(max(1, n.Velocity)))},
			event{tick: off, off: true, msg: midi.NoteOff(ch, key)},
		)
	}
	// Releases sort before attacks on the same tick so repeated pitches retrigger.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].off && !events[j].off
	})

	var tr smf.Track
	if cfg.TrackName != "" {
		tr.Add(0, smf.MetaTrackSequenceName(cfg.TrackName))
	}
	tr.Add(0, smf.MetaMeter(cfg.MeterNum, cfg.MeterDenom))
	tr.Add(0, smf.MetaTempo(cfg.TempoBPM))

	var last uint32
	for _, e := range events {
		tr.Add(e.tick-last, e.msg)
		last = e.tick
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(cfg.TicksPerBeat)
	if err := s.Add(tr); err != nil {
		return fmt.Errorf("add track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("write smf: %w", err)
	}
	return nil
}

// ReadSMF reads every note of every track and the first tempo found
// (120 when the file sets none). Notes come back ordered by start beat;
// a note still held at the end of its track ends there.
func ReadSMF(r io.Reader) ([]note.MidiNote, float64, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, 0, fmt.Errorf("read smf: %w", err)
	}
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, 0, ErrUnsupportedTimeFormat
	}
	tpb := float64(ticks.Ticks4th())

	tempo := 0.0
	var notes []note.MidiNote

	type held struct {
		tick     uint64
		velocity uint8
	}

	for _, tr := range s.Tracks {
		pending := map[[2]uint8][]held{}
		var tick uint64

		for _, ev := range tr {
			tick += uint64(ev.Delta)

			var bpm float64
			if tempo == 0 && ev.Message.GetMetaTempo(&bpm) {
				tempo = bpm
				continue
			}

			msg := midi.Message(ev.Message)
			var ch, key, vel uint8
			switch {
			case msg.GetNoteStart(&ch, &key, &vel):
				k := [2]uint8{ch, key}
				pending[k] = append(pending[k], held{tick: tick, velocity: vel})
			case msg.GetNoteEnd(&ch, &key):
				k := [2]uint8{ch, key}
				if len(pending[k]) == 0 {
					continue
				}
				h := pending[k][0]
				pending[k] = pending[k][1:]
				notes = appendNote(notes, h.tick, tick, tpb, key, h.velocity, ch)
			}
		}

		for k, hs := range pending {
			for _, h := range hs {
				notes = appendNote(notes, h.tick, tick, tpb, k[1], h.velocity, k[0])
			}
		}
	}

	if tempo == 0 {
		tempo = DefaultSMFConfig().TempoBPM
	}
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].StartBeat != notes[j].StartBeat {
			return notes[i].StartBeat < notes[j].StartBeat
		}
		return notes[i].NoteNumber < notes[j].NoteNumber
	})
	return notes, tempo, nil
}

func appendNote(notes []note.MidiNote, start, end uint64, tpb float64, key, vel, ch uint8) []note.MidiNote {
	if end <= start {
		return notes
	}
	return append(notes, note.MidiNote{
		NoteNumber:  int(key),
		StartBeat:   float64(start) / tpb,
		LengthBeats: float64(end-start) / tpb,
		Velocity:    int(vel),
		Channel:     int(ch) + 1,
	})
}
