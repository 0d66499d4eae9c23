//go:build mage

package main

import "github.com/magefile/mage/mg"

// Extract pulls raw text out of every fetched PDF in data/raw/.
// See prd001-extraction for full requirements.
func Extract() error {
	mg.Deps(Build)
	return runCLI("extract")
}
