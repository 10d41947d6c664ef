package main

import (
	"os"

	"github.com/aiba-2502/denco-notify/cmd/denco-notify/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
