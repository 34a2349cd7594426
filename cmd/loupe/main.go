// Package main is the entry point for the loupe server.
package main

import (
	"os"

	"github.com/loupelabs/loupe/cmd/loupe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
