// The credgem-api binary serves the credit ledger REST API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/credgem/credgem/internal/config"
	"github.com/credgem/credgem/internal/container"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "credgem-api:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	c := container.New(cfg)
	if err := c.Initialize(context.Background()); err != nil {
		return err
	}

	return c.Run()
}
