package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/spotter/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root, err := cli.NewRootCommand()
	if err != nil {
		fmt.Fprintf(os.Stderr, "spotter: %v\n", err)
		return 1
	}
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "spotter: %v\n", err)
		return 1
	}
	return 0
}
