// Package manifest reads and validates the manifest.json of a plugin folder.
package manifest

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/aurora-melody/sdk/sdk/contracts"
)

// FileName is the manifest's name inside a plugin folder.
const FileName = "manifest.json"

// PackageExt is the extension of packaged plugins.
const PackageExt = ".aml"

var (
	// ErrNotFound is returned when a folder has no manifest.
	ErrNotFound = errors.New(FileName + " not found")
	// ErrInvalid is returned for manifests that are not valid JSON or break the schema.
	ErrInvalid = errors.New("invalid manifest")
)

//go:embed schema.json
var schemaData []byte

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaData))
})

// Manifest is the plugin metadata shipped next to the entry point.
type Manifest struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Version     string                `json:"version"`
	Author      string                `json:"author"`
	Entry       string                `json:"entry"`
	Description string                `json:"description,omitempty"`
	Icon        string                `json:"icon,omitempty"`
	Parameters  []contracts.Parameter `json:"parameters,omitempty"`
}

// Parse decodes and validates a manifest.
func Parse(data []byte) (*Manifest, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid JSON", ErrInvalid, FileName)
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile manifest schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, describe(e))
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	for _, p := range m.Parameters {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	return &m, nil
}

// describe words a schema error the way a plugin author reads it.
func describe(e gojsonschema.ResultError) string {
	switch e.Type() {
	case "required":
		return fmt.Sprintf("missing required field %v", e.Details()["property"])
	case "pattern":
		if e.Field() == "version" {
			return fmt.Sprintf("invalid version format: %v", e.Value())
		}
	}
	return e.String()
}

// Load reads dir/manifest.json.
func Load(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w in %s", ErrNotFound, dir)
	}
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// PackageName is the default file name of the packaged plugin, with dots
// in the id replaced by dashes: "com.example.arp" becomes "com-example-arp.aml".
func (m *Manifest) PackageName() string {
	return strings.ReplaceAll(m.ID, ".", "-") + PackageExt
}
