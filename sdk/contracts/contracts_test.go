package contracts_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurora-melody/sdk/sdk/contracts"
	"github.com/aurora-melody/sdk/sdk/note"
)

const hostContext = `{
	"notes": [
		{"id": 1, "noteNumber": 60, "startBeat": 0, "lengthBeats": 2, "velocity": 100, "channel": 1},
		{"id": 2, "noteNumber": 64, "startBeat": 1, "lengthBeats": 1, "velocity": 90, "channel": 1},
		{"id": 3, "noteNumber": 67, "startBeat": 4, "lengthBeats": 1, "velocity": 80, "channel": 2}
	],
	"selectedNoteIds": [2, 3],
	"tempoBPM": 96,
	"timeSignatureNum": 3,
	"playheadPosition": 8.5,
	"parameters": {
		"num_notes": 12,
		"length": "0.25",
		"scale": "Dorian",
		"legato": "yes",
		"swing": 0,
		"octaves": "2"
	}
}`

func TestDecodePluginContext(t *testing.T) {
	ctx, err := contracts.DecodePluginContext([]byte(hostContext))
	require.NoError(t, err)

	assert.Len(t, ctx.Notes, 3)
	assert.Equal(t, 96.0, ctx.TempoBPM)
	assert.Equal(t, 3.0, ctx.BeatsPerBar())
	assert.Equal(t, 4, ctx.TimeSignatureDenom, "default kept")
	assert.Equal(t, 16.0, ctx.ViewLength())
	assert.Equal(t, 127, ctx.ViewHighNote)
	assert.Equal(t, 8.5, ctx.PlayheadPosition)
	assert.Equal(t, 64, ctx.Notes[1].NoteNumber)
	assert.Equal(t, 2, ctx.Notes[1].ID)
}

func TestDecodePluginContextDefaults(t *testing.T) {
	ctx, err := contracts.DecodePluginContext(nil)
	require.NoError(t, err)
	assert.Equal(t, 120.0, ctx.TempoBPM)
	assert.Equal(t, 4.0, ctx.BeatsPerBar())
	assert.NotNil(t, ctx.Parameters)

	ctx, err = contracts.DecodePluginContext([]byte(`{"parameters": null}`))
	require.NoError(t, err)
	assert.NotNil(t, ctx.Parameters)
}

func TestDecodePluginContextRejectsInvalidNotes(t *testing.T) {
	_, err := contracts.DecodePluginContext([]byte(`{"notes": [{"noteNumber": 200, "lengthBeats": 1, "velocity": 1, "channel": 1}]}`))
	assert.ErrorIs(t, err, note.ErrInvalidNote)

	_, err = contracts.DecodePluginContext([]byte(`{"notes": 5}`))
	assert.Error(t, err)
}

func TestContextNoteQueries(t *testing.T) {
	ctx, err := contracts.DecodePluginContext([]byte(hostContext))
	require.NoError(t, err)

	selected := ctx.SelectedNotes()
	require.Len(t, selected, 2)
	assert.Equal(t, 64, selected[0].NoteNumber)
	assert.Equal(t, 67, selected[1].NoteNumber)

	assert.Len(t, ctx.NotesInRange(0.5, 1.5), 2)
	assert.Len(t, ctx.NotesInRange(2, 4), 0)
	assert.Len(t, ctx.NotesAtBeat(1), 2)
	assert.Len(t, ctx.NotesAtBeat(2), 0, "end is exclusive")
	assert.Len(t, ctx.MidiNotes(), 3)
}

func TestTypedParameterAccessors(t *testing.T) {
	ctx, err := contracts.DecodePluginContext([]byte(hostContext))
	require.NoError(t, err)

	assert.Equal(t, 12, ctx.IntParam("num_notes", 8))
	assert.Equal(t, 2, ctx.IntParam("octaves", 1))
	assert.Equal(t, 8, ctx.IntParam("missing", 8))
	assert.Equal(t, 8, ctx.IntParam("scale", 8), "unparsable falls back")

	assert.Equal(t, 0.25, ctx.FloatParam("length", 0.5))
	assert.Equal(t, 0.5, ctx.FloatParam("missing", 0.5))

	assert.Equal(t, "Dorian", ctx.StringParam("scale", "Major"))
	assert.Equal(t, "12", ctx.StringParam("num_notes", ""))
	assert.Equal(t, "Major", ctx.StringParam("missing", "Major"))

	assert.True(t, ctx.BoolParam("legato", false))
	assert.False(t, ctx.BoolParam("swing", true))
	assert.True(t, ctx.BoolParam("missing", true))
	assert.False(t, ctx.BoolParam("scale", true))

	assert.Equal(t, "fallback", ctx.Param("missing", "fallback"))
}

func TestParameterJSON(t *testing.T) {
	p := contracts.IntParameter("num_notes", "Number of Notes", 8, 1, 64)
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"num_notes","name":"Number of Notes","type":"int","default":8,"min":1,"max":64}`, string(data))

	c := contracts.ChoiceParameter("scale", "Scale", "Major", "Major", "Minor", "Blues")
	data, err = json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"scale","name":"Scale","type":"choice","default":"Major","choices":["Major","Minor","Blues"]}`, string(data))

	f := contracts.FloatParameter("length", "Note Length", 0.5, 0.125, 4, 0.125)
	data, err = json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"length","name":"Note Length","type":"float","default":0.5,"min":0.125,"max":4,"step":0.125}`, string(data))
}

func TestParameterValidate(t *testing.T) {
	valid := []contracts.Parameter{
		contracts.IntParameter("n", "N", 8, 1, 64),
		contracts.FloatParameter("len", "Length", 0.5, 0.125, 4, 0.125),
		contracts.ChoiceParameter("scale", "Scale", "Major", "Major", "Minor"),
		contracts.BoolParameter("legato", "Legato", true),
		{ID: "prompt", Name: "Prompt", Type: contracts.ParamString, Default: ""},
	}
	for _, p := range valid {
		assert.NoError(t, p.Validate(), p.ID)
	}

	invalid := []contracts.Parameter{
		{Name: "No id", Type: contracts.ParamInt, Default: 1},
		{ID: "x", Type: contracts.ParamInt, Default: 1},
		contracts.IntParameter("n", "N", 100, 1, 64),
		{ID: "n", Name: "N", Type: contracts.ParamInt, Default: "eight"},
		{ID: "n", Name: "N", Type: contracts.ParamInt, Default: 1, Min: contracts.Bound(5), Max: contracts.Bound(1)},
		contracts.ChoiceParameter("scale", "Scale", "Lydian", "Major", "Minor"),
		{ID: "c", Name: "C", Type: contracts.ParamChoice, Default: "a"},
		{ID: "b", Name: "B", Type: contracts.ParamBool, Default: "true"},
		{ID: "k", Name: "K", Type: "knob", Default: 1},
	}
	for _, p := range invalid {
		assert.ErrorIs(t, p.Validate(), contracts.ErrInvalidParameter, "%+v", p)
	}
}

func TestMIDIEventKinds(t *testing.T) {
	assert.True(t, contracts.MIDI{Command: 0x90, Velocity: 10}.IsNoteOn())
	assert.False(t, contracts.MIDI{Command: 0x90}.IsNoteOn())
	assert.True(t, contracts.MIDI{Command: 0x90}.IsNoteOff())
	assert.True(t, contracts.MIDI{Command: 0x80, Velocity: 64}.IsNoteOff())
	assert.False(t, contracts.MIDI{Command: 0xB0, Velocity: 64}.IsNoteOff())
}

func TestMIDIEventFilter(t *testing.T) {
	var none *contracts.MIDIEventFilter
	assert.True(t, none.Allows(0xB0))

	f := &contracts.MIDIEventFilter{Commands: []contracts.MIDICommand{contracts.NoteOn, contracts.NoteOff}}
	assert.True(t, f.Allows(0x90))
	assert.True(t, f.Allows(0x80))
	assert.False(t, f.Allows(0xB0))
}

func TestDeviceInfoString(t *testing.T) {
	assert.Equal(t, "Keystation (M-Audio)", contracts.DeviceInfo{Name: "Keystation", Manufacturer: "M-Audio"}.String())
	assert.Equal(t, "IAC Bus 1", contracts.DeviceInfo{Name: "IAC Bus 1"}.String())
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]contracts.LogLevel{
		"debug":   contracts.DebugLevel,
		" INFO ":  contracts.InfoLevel,
		"warn":    contracts.WarnLevel,
		"warning": contracts.WarnLevel,
		"error":   contracts.ErrorLevel,
		"fatal":   contracts.FatalLevel,
	}
	for in, want := range cases {
		got, err := contracts.ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := contracts.ParseLogLevel("loud")
	assert.Error(t, err)
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "warn", contracts.WarnLevel.String())
	assert.Equal(t, "LogLevel(9)", contracts.LogLevel(9).String())
}
