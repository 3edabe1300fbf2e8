// Command arpeggiator serves the arpeggiator to Aurora Melody over stdin and stdout.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aurora-melody/sdk/internal/builtin"
	"github.com/aurora-melody/sdk/internal/logger"
	"github.com/aurora-melody/sdk/sdk/plugin"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.NewZapLogger()
	if err := plugin.Serve(ctx, builtin.NewArpeggiator(builtin.NewRand()), plugin.WithLogger(log)); err != nil {
		log.Error("plugin stopped", log.Field().Error("error", err))
		os.Exit(1)
	}
}
