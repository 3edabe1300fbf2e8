package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aurora-melody/sdk/sdk/contracts"
	"github.com/aurora-melody/sdk/sdk/note"
)

var (
	// ErrNoEndpoint is returned by CallEndpoint when Endpoint is empty.
	ErrNoEndpoint = errors.New("no endpoint configured")
	// ErrRequest wraps transport failures and non-2xx responses.
	ErrRequest = errors.New("API request failed")
	// ErrAPI is returned when a standard response does not report success.
	ErrAPI = errors.New("API error")
)

// DefaultAITimeout bounds a single CallEndpoint.
const DefaultAITimeout = 30 * time.Second

// InputParam is the parameter id the host uses for the free-text prompt.
const InputParam = "_input"

// AIControlType selects the widget the host draws for an AI control.
type AIControlType string

const (
	ControlSlider   AIControlType = "slider"
	ControlKnob     AIControlType = "knob"
	ControlDropdown AIControlType = "dropdown"
	ControlButton   AIControlType = "button"
	ControlToggle   AIControlType = "toggle"
	ControlInput    AIControlType = "input"
	ControlLabel    AIControlType = "label"
)

// AIControl is a UI control of an AI plugin.
type AIControl struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Type        AIControlType `json:"type"`
	Default     any           `json:"default"`
	Min         *float64      `json:"min,omitempty"`
	Max         *float64      `json:"max,omitempty"`
	Step        *float64      `json:"step,omitempty"`
	Choices     []string      `json:"choices,omitempty"`
	Placeholder string        `json:"placeholder,omitempty"`
	Description string        `json:"description,omitempty"`
}

// Parameter converts the control to a plugin parameter. Buttons and labels
// carry no value and report false.
func (c AIControl) Parameter() (contracts.Parameter, bool) {
	p := contracts.Parameter{
		ID:          c.ID,
		Name:        c.Name,
		Default:     c.Default,
		Min:         c.Min,
		Max:         c.Max,
		Step:        c.Step,
		Choices:     c.Choices,
		Description: c.Description,
	}
	switch c.Type {
	case ControlSlider, ControlKnob:
		p.Type = contracts.ParamFloat
	case ControlDropdown:
		p.Type = contracts.ParamChoice
	case ControlToggle:
		p.Type = contracts.ParamBool
	case ControlInput:
		p.Type = contracts.ParamString
	default:
		return contracts.Parameter{}, false
	}
	return p, true
}

// AIService calls a remote generation endpoint. Embed it next to Base in a
// plugin and use it from Generate:
//
//	func (p *MyAI) Generate(pc *contracts.PluginContext) ([]note.MidiNote, error) {
//		body, err := p.CallEndpoint(context.Background(), p.BuildRequest(pc))
//		if err != nil {
//			return nil, err
//		}
//		return plugin.ParseStandardResponse(body)
//	}
type AIService struct {
	Endpoint         string
	Headers          map[string]string
	Timeout          time.Duration
	Controls         []AIControl
	HasInput         bool
	InputPlaceholder string
	Client           *http.Client
}

// ControlParameters lists the value-carrying controls as parameters, plus the
// prompt input when HasInput is set.
func (s *AIService) ControlParameters() []contracts.Parameter {
	params := make([]contracts.Parameter, 0, len(s.Controls)+1)
	for _, c := range s.Controls {
		if p, ok := c.Parameter(); ok {
			params = append(params, p)
		}
	}
	if s.HasInput {
		params = append(params, contracts.Parameter{
			ID:          InputParam,
			Name:        "Prompt",
			Type:        contracts.ParamString,
			Default:     "",
			Description: s.InputPlaceholder,
		})
	}
	return params
}

// BuildRequest collects the current value of every control, and the prompt
// under "prompt" when HasInput is set.
func (s *AIService) BuildRequest(pc *contracts.PluginContext) map[string]any {
	req := make(map[string]any, len(s.Controls)+1)
	for _, c := range s.Controls {
		req[c.ID] = pc.Param(c.ID, c.Default)
	}
	if s.HasInput {
		req["prompt"] = pc.StringParam(InputParam, "")
	}
	return req
}

// CallEndpoint POSTs payload as JSON and returns the response body.
func (s *AIService) CallEndpoint(ctx context.Context, payload any) (json.RawMessage, error) {
	if s.Endpoint == "" {
		return nil, ErrNoEndpoint
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %w", ErrRequest, err)
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultAITimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrRequest, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrRequest, resp.Status)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: response is not JSON", ErrRequest)
	}
	return data, nil
}

type standardResponse struct {
	Status   string `json:"status"`
	Error    string `json:"error"`
	Message  string `json:"message"`
	Melodies []struct {
		Notes []struct {
			Pitch     *int     `json:"pitch"`
			StartTime *float64 `json:"start_time"`
			Duration  *float64 `json:"duration"`
			Velocity  *int     `json:"velocity"`
			Channel   *int     `json:"channel"`
		} `json:"notes"`
	} `json:"melodies"`
}

// ParseStandardResponse decodes the common AI response shape:
//
//	{"status": "success", "melodies": [{"notes": [
//		{"pitch": 60, "start_time": 0, "duration": 0.5, "velocity": 100, "channel": 0}
//	]}]}
//
// Channels are 0-based on the wire. Missing note fields default to pitch 60,
// start 0, duration 0.5, velocity 100 and channel 0.
func ParseStandardResponse(data []byte) ([]note.MidiNote, error) {
	var resp standardResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrAPI, err)
	}
	if resp.Status != StatusSuccess {
		msg := resp.Error
		if msg == "" {
			msg = resp.Message
		}
		if msg == "" {
			msg = "unknown error"
		}
		return nil, fmt.Errorf("%w: %s", ErrAPI, msg)
	}

	var notes []note.MidiNote
	for _, m := range resp.Melodies {
		for _, n := range m.Notes {
			mn, err := note.New(
				valueOr(n.Pitch, 60),
				valueOr(n.StartTime, 0),
				valueOr(n.Duration, 0.5),
				valueOr(n.Velocity, 100),
				valueOr(n.Channel, 0)+1,
			)
			if err != nil {
				return nil, fmt.Errorf("%w: note %d: %w", ErrAPI, len(notes), err)
			}
			notes = append(notes, mn)
		}
	}
	return notes, nil
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
