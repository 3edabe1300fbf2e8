package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const arpManifest = `{
	"id": "com.aurora.arpeggiator",
	"name": "Arpeggiator",
	"version": "1.2.0",
	"author": "Aurora",
	"entry": "arpeggiator",
	"description": "Arpeggiates selected notes",
	"parameters": [
		{"id": "pattern", "name": "Pattern", "type": "choice", "default": "up", "choices": ["up", "down"]},
		{"id": "rate", "name": "Rate", "type": "float", "default": 0.25, "min": 0.0625, "max": 1}
	]
}`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(arpManifest))
	require.NoError(t, err)

	assert.Equal(t, "com.aurora.arpeggiator", m.ID)
	assert.Equal(t, "1.2.0", m.Version)
	assert.Equal(t, "arpeggiator", m.Entry)
	require.Len(t, m.Parameters, 2)
	assert.Equal(t, "com-aurora-arpeggiator.aml", m.PackageName())
}

func TestParseRejects(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want string
	}{
		"not json":        {`{"id": `, "not valid JSON"},
		"missing entry":   {`{"id":"a","name":"A","version":"1.0","author":"me"}`, "missing required field entry"},
		"missing several": {`{"id":"a"}`, "missing required field name"},
		"version digits":  {`{"id":"a","name":"A","version":"beta","author":"me","entry":"main"}`, "invalid version format: beta"},
		"empty name":      {`{"id":"a","name":"","version":"1","author":"me","entry":"main"}`, "name"},
		"bad id":          {`{"id":"a/b","name":"A","version":"1","author":"me","entry":"main"}`, "id"},
		"param type":      {`{"id":"a","name":"A","version":"1","author":"me","entry":"main","parameters":[{"id":"x","name":"X","type":"knob"}]}`, "parameters"},
		"param bounds":    {`{"id":"a","name":"A","version":"1","author":"me","entry":"main","parameters":[{"id":"x","name":"X","type":"int","default":9,"min":1,"max":4}]}`, "outside bounds"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(arpManifest), 0o644))
	m, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "Arpeggiator", m.Name)
}
