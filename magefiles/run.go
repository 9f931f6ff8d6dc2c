//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed with anima.toml.
func (Run) Engine() error {
	mg.Deps(Build.All)
	fmt.Println("Run engine...")
	_, err := executeCmd("go", withArgs("run", ".", "-config", "anima.toml"), withStream())
	return err
}
