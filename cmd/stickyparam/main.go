package main

import (
	"os"

	"github.com/soochol/stickyparam/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
