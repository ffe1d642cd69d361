package main

import (
	"os"

	"github.com/calmdesk/calmdesk/cmd/calmdesk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
