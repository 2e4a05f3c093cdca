package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/vormadev/cachebust/cli"
	"github.com/vormadev/cachebust/internal/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		panic(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := config.LoadDotenv(".env"); err != nil {
		return err
	}
	return cli.Run(ctx, args, stdout, stderr)
}
