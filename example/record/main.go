// Command record captures a performance from a MIDI input and writes it to a
// MIDI file when interrupted.
//
//	record -list
//	record -device 1 -tempo 96 -grid 0.25 -o take.mid
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aurora-melody/sdk/internal/logger"
	"github.com/aurora-melody/sdk/sdk/contracts"
	"github.com/aurora-melody/sdk/sdk/export"
	"github.com/aurora-melody/sdk/sdk/midi"
	"github.com/aurora-melody/sdk/sdk/record"
)

func main() {
	list := flag.Bool("list", false, "list MIDI inputs and exit")
	device := flag.Int("device", 0, "index of the MIDI input to record from")
	tempo := flag.Float64("tempo", 120, "tempo in BPM")
	grid := flag.Float64("grid", 0, "quantize grid in beats (0 keeps raw timing)")
	out := flag.String("o", "take.mid", "output MIDI file")
	flag.Parse()

	log := logger.NewZapLogger()
	if err := run(log, *list, *device, *tempo, *grid, *out); err != nil {
		log.Error("recording failed", log.Field().Error("error", err))
		os.Exit(1)
	}
}

func run(log contracts.Logger, list bool, device int, tempo, grid float64, out string) error {
	client, err := midi.NewMIDIClient(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithMIDIEventFilter(contracts.MIDIEventFilter{
			Commands: []contracts.MIDICommand{contracts.NoteOn, contracts.NoteOff},
		}),
	)
	if err != nil {
		return fmt.Errorf("initialize MIDI client: %w", err)
	}

	devices, err := client.ListDevices()
	if err != nil {
		return fmt.Errorf("list devices: %w", err)
	}
	if list {
		for i, d := range devices {
			fmt.Printf("%2d  %s\n", i, d)
		}
		return nil
	}

	if err := client.SelectDevice(device); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := record.New(record.WithTempo(tempo), record.WithGrid(grid), record.WithLogger(log))
	events := make(chan contracts.MIDI, 256)
	client.StartCapture(events)

	fmt.Fprintf(os.Stderr, "Recording from %s. Press Ctrl+C to stop.\n", devices[device].Name)
	_ = rec.Run(ctx, events)
	if err := client.Stop(); err != nil {
		log.Warn("stop capture", log.Field().Error("error", err))
	}

	notes := rec.Notes()
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	cfg := export.DefaultSMFConfig()
	cfg.TempoBPM = tempo
	if err := export.WriteSMF(f, notes, cfg); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info("take saved", log.Field().String("path", out), log.Field().Int("notes", len(notes)))
	return nil
}
