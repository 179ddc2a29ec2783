//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// Intro builds the CLI and writes the introductory deck into slides/.
func Intro() error {
	mg.Deps(Build)
	return runCLI("intro")
}

// Fees builds the CLI and converts every deck in decks/ into a report in docs/.
func Fees() error {
	mg.Deps(Build)
	return runCLI("fees", "--input-dir", "decks", "--output-dir", "docs")
}

// Catalog builds the CLI and indexes every deck in decks/.
func Catalog() error {
	mg.Deps(Build)
	return runCLI("catalog", "ingest", "decks")
}

// runCLI invokes the built binary with output attached to the terminal.
func runCLI(args ...string) error {
	bin, err := filepath.Abs(binPath)
	if err != nil {
		return err
	}
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("decktools %s: %w", args[0], err)
	}
	return nil
}
