//go:build mage

package main

import "github.com/magefile/mage/mg"

// Train fine-tunes the base model on the generated training pairs.
// See prd004-finetuning for full requirements.
func Train() error {
	mg.Deps(Build)
	return runCLI("finetune")
}
