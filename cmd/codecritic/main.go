package main

import (
	"os"

	"github.com/dshills/codecritic/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
