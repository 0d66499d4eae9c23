//go:build mage

package main

import "github.com/magefile/mage/mg"

// Clean normalizes structured Markdown and emits the training-pair CSV.
// See prd003-cleaning for full requirements.
func Clean() error {
	mg.Deps(Build)
	return runCLI("clean")
}
