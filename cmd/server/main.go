package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sundayezeilo/videorecords/internal/app"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// SIGINT or SIGTERM cancels ctx, which starts the graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	return application.Start(ctx)
}
