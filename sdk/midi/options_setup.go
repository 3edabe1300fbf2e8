package midi

import (
	"errors"

	"github.com/aurora-melody/sdk/internal/logger"
	"github.com/aurora-melody/sdk/sdk/contracts"
)

// DefaultClientName is the CoreMIDI client name shown in Audio MIDI Setup.
const DefaultClientName = "Aurora Melody SDK"

// ErrEmptyFilter is returned when a filter is set without any command.
var ErrEmptyFilter = errors.New("MIDI event filter has no commands")

// applyDefaultOptions fills in the logger and CoreMIDI config.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.MIDIEventFilter != nil && len(options.MIDIEventFilter.Commands) == 0 {
		return contracts.ClientOptions{}, ErrEmptyFilter
	}
	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogFilePath != "" {
		options.Logger.SetDestination(contracts.FileLog, options.LogFilePath)
	}
	if options.CoreMIDIConfig == nil || options.CoreMIDIConfig.ClientName == "" {
		options.CoreMIDIConfig = &contracts.CoreMIDIConfig{ClientName: DefaultClientName}
	}

	options.Logger.SetLevel(options.LogLevel)
	return *options, nil
}
