//go:build mage

// Package main contains Mage build targets for sfenizer developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "sfenizer"
	cmdPkg  = "./cmd/sfenizer"
)

// Default builds the CLI.
var Default = Build

// version is stamped into the binary; git describe when available.
func version() string {
	if v := os.Getenv("SFENIZER_VERSION"); v != "" {
		return v
	}
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || v == "" {
		return "dev"
	}
	return strings.TrimSpace(v)
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	ldflags := "-X main.version=" + version()
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Vet runs go vet over the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs vet and the tests.
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Serve builds the CLI and starts the local surface against the development
// conversion service (http://localhost:8000).
func Serve() error {
	mg.Deps(Build)
	return sh.RunWithV(map[string]string{"SFENIZER_ENV": "development"},
		filepath.Join(binDir, binName), "serve", "--log-level", "debug")
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}
