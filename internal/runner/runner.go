package runner

import (
	goerrors "errors"
	"fmt"
	"os/exec"

	"pxelab/internal/errors"
)

// Command builds an exec.Cmd for an external tool, routing it through sudo
// when elevate is set.
func Command(elevate bool, name string, args ...string) *exec.Cmd {
	if elevate {
		return exec.Command("sudo", append([]string{name}, args...)...)
	}
	return exec.Command(name, args...)
}

// Run executes a command and returns an error with the combined output if it
// fails. The command's exit code is carried so the process can propagate it.
var Run = func(cmd *exec.Cmd) error {
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errors.WithCode(cmd.Args[0], errors.ExternalTool, exitCode(err),
			fmt.Errorf("command failed: %s\n%s", cmd.String(), string(output)))
	}
	return nil
}

// Require verifies that every named binary is on PATH. A missing binary is
// fatal with exit code 2.
var Require = func(names ...string) error {
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			return errors.WithCode("check dependencies", errors.ExternalTool, 2,
				fmt.Errorf("%s not found. Please install it", name))
		}
	}
	return nil
}

func exitCode(err error) int {
	var ee *exec.ExitError
	if goerrors.As(err, &ee) {
		return ee.ExitCode()
	}
	return 0
}
