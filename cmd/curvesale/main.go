package main

import (
	"os"

	"github.com/rovshanmuradov/curvesale/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
