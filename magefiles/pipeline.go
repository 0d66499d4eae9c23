//go:build mage

package main

import "github.com/magefile/mage/mg"

// Pipeline runs extract, convert, clean, and corpus store over everything
// already fetched into data/raw/.
func Pipeline() error {
	mg.Deps(Build)
	return runCLI("run")
}
