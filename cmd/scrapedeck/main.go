// cmd/scrapedeck/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/law-makers/scrapedeck/internal/cli"
	"github.com/rs/zerolog/log"
)

func main() {
	// Cancel in-flight scrapes on interrupt; a second signal exits immediately
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Warn().Msg("Interrupt received, shutting down gracefully...")
		stop()
	}()

	cli.Execute(ctx)
}
