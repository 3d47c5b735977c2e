//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Tidies the module and builds the tristris binary into bin/.
func (Build) Binary() error {
	if err := goTidy(); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/tristris", "."), withStream()); err != nil {
		return err
	}
	return nil
}

type Test mg.Namespace

// Runs the unit tests of the pure Go packages. The desktop host needs cgo
// and a display, so it is left out.
func (Test) Unit() error {
	args := []string{"test", "-race", "./engine/core/...", "./engine/fsm/...", "./engine/containers/...",
		"./engine/math/...", "./engine/renderer/...", "./engine/assets/...", "./engine/telemetry/...",
		"./engine/platform", "./engine", "./testbed/..."}
	if _, err := executeCmd("go", withArgs(args...), withStream()); err != nil {
		return err
	}
	return nil
}
