package main

import (
	"os"

	"github.com/hollmark/staffd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
