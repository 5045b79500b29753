package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fahmaliyi/acctvault/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, cli.Options{}); err != nil {
		fmt.Fprintln(os.Stderr, cli.Error.Sprint("Error: "+err.Error()))
		stop()
		os.Exit(1)
	}
}
