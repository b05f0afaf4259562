package main

import (
	"os"

	"github.com/signalnine/seedbench/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
