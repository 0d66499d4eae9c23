//go:build mage

package main

import "github.com/magefile/mage/mg"

// Fetch downloads the PDFs listed in urlFile into data/raw/.
// See prd006-fetch for full requirements.
func Fetch(urlFile string) error {
	mg.Deps(Build)
	return runCLI("fetch", "--url-file", urlFile)
}
