// Package main is the entry point for the loupectl CLI.
package main

import "github.com/loupelabs/loupe/cmd/loupectl/cmd"

func main() {
	cmd.Execute()
}
