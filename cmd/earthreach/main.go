package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"earthreach/internal/infrastructure/env"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(env.NewEnvService())
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
