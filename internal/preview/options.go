package preview

import (
	"math/rand/v2"

	"github.com/aurora-melody/sdk/internal/logger"
	"github.com/aurora-melody/sdk/sdk/contracts"
)

const (
	defaultColumns     = 64
	defaultBeatsPerCol = 0.25
	maxRows            = 36
)

// Options configures the preview model.
type Options struct {
	Context     *contracts.PluginContext
	ExportDir   string
	Columns     int
	BeatsPerCol float64
	Rand        *rand.Rand
	Logger      contracts.Logger
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithContext sets the piano-roll state passed to every plugin.
func WithContext(pc *contracts.PluginContext) Option {
	return func(o *Options) {
		o.Context = pc
	}
}

// WithExportDir sets where "e" writes MIDI files.
func WithExportDir(dir string) Option {
	return func(o *Options) {
		o.ExportDir = dir
	}
}

// WithColumns sets the grid width.
func WithColumns(cols int) Option {
	return func(o *Options) {
		o.Columns = cols
	}
}

// WithRand sets the generator used by the humanize key.
func WithRand(rng *rand.Rand) Option {
	return func(o *Options) {
		o.Rand = rng
	}
}

// WithLogger sets the logger. The default discards everything, since the
// terminal belongs to the UI.
func WithLogger(l contracts.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

func applyDefaultOptions(opts ...Option) Options {
	o := Options{
		ExportDir:   ".",
		Columns:     defaultColumns,
		BeatsPerCol: defaultBeatsPerCol,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Context == nil {
		o.Context = contracts.NewPluginContext()
	}
	if o.Columns < 8 {
		o.Columns = defaultColumns
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if o.Logger == nil {
		o.Logger = logger.NewNopLogger()
	}
	return o
}
