// Command aurora-preview shows the built-in generators on a terminal piano
// roll and exports what they produce as MIDI files.
//
//	aurora-preview
//	aurora-preview -tempo 96 -seed 7 -o ./out
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aurora-melody/sdk/internal/builtin"
	"github.com/aurora-melody/sdk/internal/logger"
	"github.com/aurora-melody/sdk/internal/preview"
	"github.com/aurora-melody/sdk/sdk/contracts"
)

type config struct {
	tempo    float64
	seed     uint64
	playhead float64
	out      string
	logFile  string
	logLevel contracts.LogLevel
}

func main() {
	cfg, code := parse(os.Args[1:], os.Stderr)
	if code >= 0 {
		os.Exit(code)
	}

	if _, err := tea.NewProgram(newModel(cfg), tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "aurora-preview:", err)
		os.Exit(1)
	}
}

// parse returns the configuration, or an exit code >= 0 when the program
// should stop.
func parse(args []string, stderr io.Writer) (config, int) {
	var cfg config
	fs := flag.NewFlagSet("aurora-preview", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Float64Var(&cfg.tempo, "tempo", 120, "tempo in BPM written to exported files")
	fs.Uint64Var(&cfg.seed, "seed", 0, "random seed (0 picks one)")
	fs.Float64Var(&cfg.playhead, "playhead", 0, "beat the generators start at")
	fs.StringVar(&cfg.out, "o", ".", "directory for exported .mid files")
	fs.StringVar(&cfg.logFile, "log", "", "append logs to this file")
	level := fs.String("log-level", "debug", "minimum level written to -log (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cfg, 0
		}
		return cfg, 2
	}
	if fs.NArg() > 0 || cfg.tempo <= 0 || cfg.playhead < 0 {
		fs.Usage()
		return cfg, 2
	}
	var err error
	if cfg.logLevel, err = contracts.ParseLogLevel(*level); err != nil {
		fmt.Fprintln(stderr, "aurora-preview:", err)
		return cfg, 2
	}
	return cfg, -1
}

func newModel(cfg config) preview.Model {
	seed := cfg.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))

	log := logger.NewNopLogger()
	if cfg.logFile != "" {
		log = logger.NewDevelopmentLogger()
		log.SetLevel(cfg.logLevel)
		log.SetDestination(contracts.FileLog, cfg.logFile)
	}

	pc := contracts.NewPluginContext()
	pc.TempoBPM = cfg.tempo
	pc.PlayheadPosition = cfg.playhead

	return preview.New(builtin.All(rng),
		preview.WithContext(pc),
		preview.WithExportDir(cfg.out),
		preview.WithRand(rng),
		preview.WithLogger(log),
	)
}
