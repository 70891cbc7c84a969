package main

import (
	"github.com/joho/godotenv"

	"github.com/bigdatawirtz/semanticsearch/internal/cli"
)

func main() {
	// A missing .env is fine; keys may already be in the environment.
	_ = godotenv.Load()
	cli.Execute()
}
