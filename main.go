package main

import (
	"os"

	"github.com/mdserve/mdserve/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
