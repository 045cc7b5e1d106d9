package main

import (
	"context"
	"fmt"
	"os"

	"github.com/healthpulse/ingestion-gateway/internal/app"
)

// run boots the gateway: config → tracer → producer → HTTP server, then
// blocks until a termination signal triggers graceful shutdown.
func run() error {
	ctx := context.Background()

	a, err := app.NewApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	a.Start()
	a.WaitForShutdown()
	a.Shutdown()

	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
