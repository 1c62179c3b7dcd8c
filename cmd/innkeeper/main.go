package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/tjfontaine/innkeeper/internal/cli"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
