//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

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

// Runs the tests with coverage and writes coverage.out.
func (Test) Cover() error {
	_, err := executeCmd("go", withArgs("test", "-coverprofile=coverage.out", "./..."), withStream())
	return err
}

type Lint mg.Namespace

// Runs go vet on every package.
func (Lint) Vet() error {
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}

// Runs go mod tidy.
func Tidy() error {
	_, err := executeCmd("go", withArgs("mod", "tidy"))
	return err
}

// Runs the many-rigs benchmark, optionally with a TOML config path in OXY_CONFIG.
func Bench() error {
	mg.Deps(Test.Unit)
	args := []string{"run", "examples/many_rigs.go"}
	if cfg := env("OXY_CONFIG"); cfg != "" {
		args = append(args, cfg)
	}
	_, err := executeCmd("go", withArgs(args...), withStream())
	return err
}
