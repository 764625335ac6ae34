package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/sceneforge/internal/cmd/scenectl"
	"github.com/louisbranch/sceneforge/internal/platform/config"
)

// main runs the scene control CLI.
func main() {
	log.SetPrefix("[SCENECTL] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := scenectl.NewRoot().ExecuteContext(ctx); err != nil {
		config.Exitf("%v", err)
	}
}
