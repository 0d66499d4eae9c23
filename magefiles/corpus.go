//go:build mage

package main

import "github.com/magefile/mage/mg"

// Index ingests training pairs into the SQLite corpus index.
// See prd005-corpus-index for full requirements.
func Index() error {
	mg.Deps(Build)
	return runCLI("corpus", "store")
}
