package contracts

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/aurora-melody/sdk/sdk/note"
)

// RollNote is a note already on the piano roll, tagged with the host's id.
type RollNote struct {
	ID int `json:"id,omitempty"`
	note.MidiNote
}

// PluginContext is the piano-roll state the host passes to Generate.
type PluginContext struct {
	Notes              []RollNote     `json:"notes"`
	SelectedNoteIDs    []int          `json:"selectedNoteIds"`
	TempoBPM           float64        `json:"tempoBPM"`
	TimeSignatureNum   int            `json:"timeSignatureNum"`
	TimeSignatureDenom int            `json:"timeSignatureDenom"`
	ViewStartBeat      float64        `json:"viewStartBeat"`
	ViewEndBeat        float64        `json:"viewEndBeat"`
	ViewLowNote        int            `json:"viewLowNote"`
	ViewHighNote       int            `json:"viewHighNote"`
	PlayheadPosition   float64        `json:"playheadPosition"`
	Parameters         map[string]any `json:"parameters"`
}

// NewPluginContext returns a context with the host defaults: 120 BPM, 4/4,
// a 16 beat view over the full note range.
func NewPluginContext() *PluginContext {
	return &PluginContext{
		TempoBPM:           120,
		TimeSignatureNum:   4,
		TimeSignatureDenom: 4,
		ViewEndBeat:        16,
		ViewHighNote:       note.MaxNumber,
		Parameters:         map[string]any{},
	}
}

// DecodePluginContext parses the host's JSON. Missing fields keep the
// defaults of NewPluginContext and every note is validated.
func DecodePluginContext(data []byte) (*PluginContext, error) {
	ctx := NewPluginContext()
	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, ctx); err != nil {
			return nil, fmt.Errorf("decode plugin context: %w", err)
		}
	}
	if ctx.Parameters == nil {
		ctx.Parameters = map[string]any{}
	}
	for i, n := range ctx.Notes {
		if err := n.Validate(); err != nil {
			return nil, fmt.Errorf("decode plugin context: note %d: %w", i, err)
		}
	}
	return ctx, nil
}

// BeatsPerBar is the time-signature numerator.
func (c *PluginContext) BeatsPerBar() float64 {
	return float64(c.TimeSignatureNum)
}

// ViewLength is the width of the visible range in beats.
func (c *PluginContext) ViewLength() float64 {
	return c.ViewEndBeat - c.ViewStartBeat
}

// MidiNotes returns the existing notes without host ids.
func (c *PluginContext) MidiNotes() []note.MidiNote {
	out := make([]note.MidiNote, len(c.Notes))
	for i, n := range c.Notes {
		out[i] = n.MidiNote
	}
	return out
}

// SelectedNotes returns the notes whose ids are selected.
func (c *PluginContext) SelectedNotes() []RollNote {
	var out []RollNote
	for _, n := range c.Notes {
		if slices.Contains(c.SelectedNoteIDs, n.ID) {
			out = append(out, n)
		}
	}
	return out
}

// NotesInRange returns notes overlapping [start, end).
func (c *PluginContext) NotesInRange(start, end float64) []RollNote {
	var out []RollNote
	for _, n := range c.Notes {
		if n.StartBeat < end && n.EndBeat() > start {
			out = append(out, n)
		}
	}
	return out
}

// NotesAtBeat returns notes sounding at beat.
func (c *PluginContext) NotesAtBeat(beat float64) []RollNote {
	var out []RollNote
	for _, n := range c.Notes {
		if n.StartBeat <= beat && beat < n.EndBeat() {
			out = append(out, n)
		}
	}
	return out
}

// Param returns the raw parameter value or def when unset.
func (c *PluginContext) Param(key string, def any) any {
	if v, ok := c.Parameters[key]; ok && v != nil {
		return v
	}
	return def
}

// IntParam returns a parameter as int. Floats are truncated and numeric
// strings parsed; anything else yields def.
func (c *PluginContext) IntParam(key string, def int) int {
	v, ok := toFloat(c.Param(key, nil))
	if !ok {
		return def
	}
	return int(v)
}

// FloatParam returns a parameter as float64, or def.
func (c *PluginContext) FloatParam(key string, def float64) float64 {
	v, ok := toFloat(c.Param(key, nil))
	if !ok {
		return def
	}
	return v
}

// StringParam returns a parameter formatted as a string, or def.
func (c *PluginContext) StringParam(key string, def string) string {
	switch v := c.Param(key, nil).(type) {
	case nil:
		return def
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// BoolParam returns a parameter as bool. Strings "true", "1", "yes" and "on"
// are true; numbers are true when non-zero.
func (c *PluginContext) BoolParam(key string, def bool) bool {
	switch v := c.Param(key, nil).(type) {
	case nil:
		return def
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on":
			return true
		}
		return false
	default:
		f, ok := toFloat(v)
		if !ok {
			return def
		}
		return f != 0
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
