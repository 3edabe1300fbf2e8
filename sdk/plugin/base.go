// Package plugin hosts a contracts.Plugin in a child process of Aurora Melody
// and provides helpers for writing plugins.
package plugin

import "github.com/aurora-melody/sdk/sdk/contracts"

// Metadata used when a plugin leaves a field empty.
const (
	DefaultName    = "Unnamed Plugin"
	DefaultAuthor  = "Unknown"
	DefaultVersion = "1.0.0"
)

// Base implements contracts.Describer. Embed it in a plugin struct and fill
// in the metadata:
//
//	type Echo struct {
//		plugin.Base
//	}
//
//	p := &Echo{Base: plugin.Base{Name: "Echo", Author: "me", Version: "0.1.0"}}
type Base struct {
	Name        string
	Author      string
	Version     string
	Description string
	Params      []contracts.Parameter
}

// Info returns the metadata with defaults for empty fields.
func (b Base) Info() contracts.PluginInfo {
	info := contracts.PluginInfo{
		Name:        b.Name,
		Author:      b.Author,
		Version:     b.Version,
		Description: b.Description,
	}
	if info.Name == "" {
		info.Name = DefaultName
	}
	if info.Author == "" {
		info.Author = DefaultAuthor
	}
	if info.Version == "" {
		info.Version = DefaultVersion
	}
	return info
}

// Parameters returns the declared controls, never nil.
func (b Base) Parameters() []contracts.Parameter {
	if b.Params == nil {
		return []contracts.Parameter{}
	}
	return b.Params
}

// Describe returns the metadata and parameters of p. Plugins that do not
// implement contracts.Describer get the defaults.
func Describe(p contracts.Plugin) (contracts.PluginInfo, []contracts.Parameter) {
	if d, ok := p.(contracts.Describer); ok {
		params := d.Parameters()
		if params == nil {
			params = []contracts.Parameter{}
		}
		return d.Info(), params
	}
	return Base{}.Info(), []contracts.Parameter{}
}
