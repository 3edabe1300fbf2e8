// Command ai-melody is a plugin that asks a remote model for a melody.
//
// The endpoint and token come from AURORA_AI_ENDPOINT and AURORA_AI_TOKEN.
// The service may answer in the standard {"status", "melodies"} shape or in a
// compact {"generated": [{"p", "t", "d", "v", "ch"}]} shape.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aurora-melody/sdk/internal/logger"
	"github.com/aurora-melody/sdk/sdk/contracts"
	"github.com/aurora-melody/sdk/sdk/note"
	"github.com/aurora-melody/sdk/sdk/plugin"
)

type generator struct {
	plugin.Base
	plugin.AIService
}

func newGenerator(endpoint, token string) *generator {
	g := &generator{
		Base: plugin.Base{
			Name:        "AI Melody Generator",
			Author:      "Aurora Melody Labs",
			Version:     "1.0.0",
			Description: "Generate melodies using AI",
		},
		AIService: plugin.AIService{
			Endpoint: endpoint,
			Controls: []plugin.AIControl{
				{ID: "temperature", Name: "Temperature", Type: plugin.ControlKnob, Default: 0.7,
					Min: contracts.Bound(0.1), Max: contracts.Bound(1), Step: contracts.Bound(0.1)},
				{ID: "bars", Name: "Bars", Type: plugin.ControlKnob, Default: 8,
					Min: contracts.Bound(1), Max: contracts.Bound(32), Step: contracts.Bound(1)},
				{ID: "style", Name: "Style", Type: plugin.ControlDropdown, Default: "Jazz",
					Choices: []string{"Jazz", "Classical", "Pop", "Electronic"}},
				{ID: "density", Name: "Density", Type: plugin.ControlSlider, Default: 5,
					Min: contracts.Bound(1), Max: contracts.Bound(10), Step: contracts.Bound(1)},
			},
			HasInput:         true,
			InputPlaceholder: "Describe your melody (optional)...",
		},
	}
	if token != "" {
		g.Headers = map[string]string{"Authorization": "Bearer " + token}
	}
	g.Params = g.ControlParameters()
	return g
}

func (g *generator) Generate(pc *contracts.PluginContext) ([]note.MidiNote, error) {
	req := g.BuildRequest(pc)
	req["bars"] = pc.IntParam("bars", 8)
	req["density"] = pc.IntParam("density", 5)
	req["tempo_bpm"] = pc.TempoBPM

	body, err := g.CallEndpoint(context.Background(), req)
	if err != nil {
		return nil, fmt.Errorf("call AI service: %w", err)
	}
	return parse(body)
}

type compactNote struct {
	P  *int     `json:"p"`
	T  *float64 `json:"t"`
	D  *float64 `json:"d"`
	V  *int     `json:"v"`
	Ch *int     `json:"ch"`
}

func parse(body []byte) ([]note.MidiNote, error) {
	var compact struct {
		Status    string        `json:"status"`
		Generated []compactNote `json:"generated"`
	}
	if err := json.Unmarshal(body, &compact); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if compact.Status != "" || compact.Generated == nil {
		return plugin.ParseStandardResponse(body)
	}

	notes := make([]note.MidiNote, 0, len(compact.Generated))
	for i, c := range compact.Generated {
		n, err := note.New(or(c.P, 60), or(c.T, 0), or(c.D, 0.5), or(c.V, 100), or(c.Ch, 0)+1)
		if err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
		notes = append(notes, n)
	}
	return notes, nil
}

func or[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.NewZapLogger()
	g := newGenerator(os.Getenv("AURORA_AI_ENDPOINT"), os.Getenv("AURORA_AI_TOKEN"))
	if g.Endpoint == "" {
		log.Warn("AURORA_AI_ENDPOINT is not set; generate requests will fail")
	}
	if err := plugin.Serve(ctx, g, plugin.WithLogger(log)); err != nil {
		log.Error("plugin stopped", log.Field().Error("error", err))
		os.Exit(1)
	}
}
