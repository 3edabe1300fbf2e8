package plugin

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aurora-melody/sdk/sdk/contracts"
	"github.com/aurora-melody/sdk/sdk/note"
)

// Protocol commands.
const (
	CommandDescribe         = "describe"
	CommandGenerate         = "generate"
	CommandParameterChanged = "parameterChanged"
)

// Response statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// maxLine bounds a single request; a context with thousands of notes fits easily.
const maxLine = 16 << 20

var (
	// ErrUnknownCommand is reported for requests with an unrecognised command.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidOutput is returned when a plugin generates a note that fails validation.
	ErrInvalidOutput = errors.New("plugin produced an invalid note")
)

// Request is one line read from the host.
type Request struct {
	Command string          `json:"command"`
	Context json.RawMessage `json:"context,omitempty"`
	ID      string          `json:"id,omitempty"`
	Value   any             `json:"value,omitempty"`
}

// Response is one line written back to the host.
type Response struct {
	Status     string                `json:"status"`
	Notes      []note.MidiNote       `json:"notes,omitempty"`
	Info       *contracts.PluginInfo `json:"info,omitempty"`
	Parameters []contracts.Parameter `json:"parameters,omitempty"`
	Error      string                `json:"error,omitempty"`
}

// Serve runs p as a child process of the host. It reads one JSON request per
// line and answers each with one JSON response line. OnLoad runs before the
// first request and OnUnload after the input ends or ctx is cancelled.
//
// Errors from individual requests are reported to the host and do not stop
// the loop; Serve only fails when loading the plugin or the transport fails.
func Serve(ctx context.Context, p contracts.Plugin, opts ...Option) error {
	options := applyDefaultOptions(opts...)
	info, params := Describe(p)
	log := options.Logger.With(options.Logger.Field().String("plugin", info.Name))

	if l, ok := p.(contracts.Loader); ok {
		if err := l.OnLoad(); err != nil {
			log.Error("plugin failed to load", log.Field().Error("error", err))
			return fmt.Errorf("load %s: %w", info.Name, err)
		}
	}
	log.Info("plugin loaded",
		log.Field().String("version", info.Version),
		log.Field().Int("parameters", len(params)))

	defer func() {
		if u, ok := p.(contracts.Unloader); ok {
			if err := u.OnUnload(); err != nil {
				log.Warn("plugin unload failed", log.Field().Error("error", err))
			}
		}
		log.Info("plugin unloaded")
	}()

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(options.Input)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	enc := json.NewEncoder(options.Output)
	for {
		select {
		case <-ctx.Done():
			log.Debug("serve cancelled", log.Field().Error("reason", ctx.Err()))
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("read request: %w", err)
					}
				default:
				}
				return nil
			}
			if len(line) == 0 {
				continue
			}
			if err := enc.Encode(handle(p, line, log)); err != nil {
				return fmt.Errorf("write response: %w", err)
			}
		}
	}
}

func handle(p contracts.Plugin, line []byte, log contracts.Logger) Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		log.Warn("malformed request", log.Field().Error("error", err))
		return failure(fmt.Errorf("decode request: %w", err))
	}
	log.Debug("request", log.Field().String("command", req.Command))

	switch req.Command {
	case CommandDescribe:
		info, params := Describe(p)
		return Response{Status: StatusSuccess, Info: &info, Parameters: params}

	case CommandGenerate:
		pc, err := contracts.DecodePluginContext(req.Context)
		if err != nil {
			log.Warn("invalid context", log.Field().Error("error", err))
			return failure(err)
		}
		began := time.Now()
		notes, err := generate(p, pc)
		if err != nil {
			log.Error("generate failed", log.Field().Error("error", err))
			return failure(err)
		}
		log.Debug("generated", log.Field().Int("notes", len(notes)), log.Field().Duration("took", time.Since(began)))
		return Response{Status: StatusSuccess, Notes: notes}

	case CommandParameterChanged:
		if l, ok := p.(contracts.ParameterListener); ok {
			l.OnParameterChanged(req.ID, req.Value)
		}
		return Response{Status: StatusSuccess}

	default:
		return failure(fmt.Errorf("%w: %q", ErrUnknownCommand, req.Command))
	}
}

// generate calls the plugin and checks its output. A panicking plugin is
// reported as an error instead of killing the process.
func generate(p contracts.Plugin, pc *contracts.PluginContext) (notes []note.MidiNote, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin panicked: %v", r)
		}
	}()

	notes, err = p.Generate(pc)
	if err != nil {
		return nil, err
	}
	for i, n := range notes {
		if verr := n.Validate(); verr != nil {
			return nil, fmt.Errorf("%w: note %d: %w", ErrInvalidOutput, i, verr)
		}
	}
	if notes == nil {
		notes = []note.MidiNote{}
	}
	return notes, nil
}

func failure(err error) Response {
	return Response{Status: StatusError, Error: err.Error()}
}

// Run calls Generate once with pc and logs the outcome. It is handy for
// trying a plugin from a main function without a host.
func Run(p contracts.Plugin, pc *contracts.PluginContext, opts ...Option) ([]note.MidiNote, error) {
	options := applyDefaultOptions(opts...)
	info, _ := Describe(p)
	log := options.Logger.With(options.Logger.Field().String("plugin", info.Name))

	if pc == nil {
		pc = contracts.NewPluginContext()
	}
	notes, err := generate(p, pc)
	if err != nil {
		log.Error("generate failed", log.Field().Error("error", err))
		return nil, err
	}
	log.Info("generated", log.Field().Int("notes", len(notes)))
	for _, n := range notes {
		log.Debug(n.String())
	}
	return notes, nil
}
