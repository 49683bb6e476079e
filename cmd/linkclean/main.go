package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/law-makers/linkclean/internal/cli"
)

func main() {
	// Ctrl-C cancels in-flight preview fetches and batch work
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.Execute(ctx)
}
