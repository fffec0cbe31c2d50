package main

import (
	"os"

	"github.com/swapforge/swapforge/cmd/swapforged/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
