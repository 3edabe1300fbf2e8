package contracts

import "github.com/aurora-melody/sdk/sdk/note"

// PluginInfo is the metadata shown for a plugin in Aurora Melody.
type PluginInfo struct {
	Name        string `json:"name"`
	Author      string `json:"author"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

// Plugin generates notes for the piano roll. It is the only capability a
// plugin must provide.
type Plugin interface {
	Generate(ctx *PluginContext) ([]note.MidiNote, error)
}

// Describer exposes plugin metadata and UI parameters to the host.
type Describer interface {
	Info() PluginInfo
	Parameters() []Parameter
}

// Loader is implemented by plugins that need setup before the first request.
type Loader interface {
	OnLoad() error
}

// Unloader is implemented by plugins that release resources when the host unloads them.
type Unloader interface {
	OnUnload() error
}

// ParameterListener is notified when the user changes a parameter in the UI.
type ParameterListener interface {
	OnParameterChanged(id string, value any)
}
