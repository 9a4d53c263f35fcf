package main

import (
	"os"

	"github.com/sadopc/tempo/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
