//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Downloads modules and builds every package and the runner binary.
func (Build) All() error {
	if _, err := executeCmd("go", withArgs("mod", "download"), withStream()); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "./..."), withStream()); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("build", "-o", "bin/anima", "."), withStream())
	return err
}

// Cross-compiles the runner for windows, where the d3d12 driver is available.
func (Build) Windows() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/anima.exe", "."), withEnv("GOOS=windows", "GOARCH=amd64"), withStream())
	return err
}

type Test mg.Namespace

// Runs the unit tests of every package.
func (Test) Unit() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Runs the unit tests with the race detector.
func (Test) Race() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream())
	return err
}

type Lint mg.Namespace

// Runs go vet on every package, including the windows only ones.
func (Lint) Vet() error {
	if _, err := executeCmd("go", withArgs("vet", "./..."), withStream()); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("vet", "./engine/renderer/d3d12/native/..."), withEnv("GOOS=windows"), withStream())
	return err
}
