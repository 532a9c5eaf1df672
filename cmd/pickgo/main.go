package main

import (
	"os"

	"github.com/sprite-ai/pickgo/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
