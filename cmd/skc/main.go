package main

import (
	"os"

	"github.com/bnema/skport-checkin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
