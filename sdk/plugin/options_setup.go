package plugin

import (
	"io"
	"os"

	"github.com/aurora-melody/sdk/internal/logger"
	"github.com/aurora-melody/sdk/sdk/contracts"
)

// Options configures Serve and Run.
type Options struct {
	Logger      contracts.Logger
	LogLevel    contracts.LogLevel
	LogFilePath string
	Input       io.Reader // requests, one JSON object per line
	Output      io.Writer // responses, one JSON object per line
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithLogger sets the logger. Logs must not go to stdout, which carries the protocol.
func WithLogger(l contracts.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithLogLevel sets the logging level.
func WithLogLevel(level contracts.LogLevel) Option {
	return func(o *Options) {
		o.LogLevel = level
	}
}

// WithLogFile sends logs to a file.
func WithLogFile(path string) Option {
	return func(o *Options) {
		o.LogFilePath = path
	}
}

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(o *Options) {
		o.Input = in
		o.Output = out
	}
}

func applyDefaultOptions(opts ...Option) Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogFilePath != "" {
		options.Logger.SetDestination(contracts.FileLog, options.LogFilePath)
	}
	if options.Input == nil {
		options.Input = os.Stdin
	}
	if options.Output == nil {
		options.Output = os.Stdout
	}

	options.Logger.SetLevel(options.LogLevel)
	return *options
}
