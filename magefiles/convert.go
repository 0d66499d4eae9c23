//go:build mage

package main

import "github.com/magefile/mage/mg"

// Convert structures extracted text into Markdown under data/markdown/.
// See prd002-structuring for full requirements.
func Convert() error {
	mg.Deps(Build)
	return runCLI("convert")
}
