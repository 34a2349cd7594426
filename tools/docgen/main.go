// Package main generates CLI reference documentation from the loupectl
// command tree.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/loupelabs/loupe/cmd/loupectl/cmd"
)

func main() {
	output := flag.String("output", "docs/cli", "directory for the generated markdown")
	flag.Parse()

	if err := run(*output); err != nil {
		log.Fatal(err)
	}
}

func run(output string) error {
	if err := os.MkdirAll(output, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	// The auto-gen timestamp churns every page on every run; drop it so the
	// docs diff only when a command changes.
	root := cmd.Root()
	root.DisableAutoGenTag = true

	if err := doc.GenMarkdownTree(root, output); err != nil {
		return fmt.Errorf("generating docs: %w", err)
	}

	fmt.Printf("loupectl docs written to %s/\n", output)
	return nil
}
