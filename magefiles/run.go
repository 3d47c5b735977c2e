//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the game in a desktop window.
func (Run) Game() error {
	fmt.Println("Run tristris...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "config.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the game without a window, for a quick look at the loop telemetry.
func (Run) Headless() error {
	mg.Deps(Build.Binary)
	if _, err := executeCmd("bin/tristris", withArgs("-headless", "-config", "config.toml"), withStream()); err != nil {
		return err
	}
	return nil
}
