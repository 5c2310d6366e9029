package runner

import (
	"os/exec"
	"strings"
	"testing"

	"pxelab/internal/errors"
)

func TestRunSuccess(t *testing.T) {
	// The "true" command should always succeed.
	if err := Run(exec.Command("true")); err != nil {
		t.Errorf("Run() with a succeeding command returned an error: %v", err)
	}
}

func TestRunFailure(t *testing.T) {
	// The "false" command should always fail.
	err := Run(exec.Command("false"))
	if err == nil {
		t.Fatal("Run() with a failing command did not return an error")
	}
	if !strings.Contains(err.Error(), "command failed") {
		t.Errorf("Run() error message was not in the expected format: %v", err)
	}
	if code := errors.ExitCode(err); code != 1 {
		t.Errorf("ExitCode = %d, want 1", code)
	}
}

func TestRunFailureCarriesExitCode(t *testing.T) {
	err := Run(exec.Command("sh", "-c", "echo 'test error' >&2; exit 3"))
	if err == nil {
		t.Fatal("Run() with a failing command did not return an error")
	}
	if !strings.Contains(err.Error(), "test error") {
		t.Errorf("Run() error did not contain the command's output: %v", err)
	}
	if code := errors.ExitCode(err); code != 3 {
		t.Errorf("ExitCode = %d, want 3", code)
	}
}

func TestCommandSudoPrefix(t *testing.T) {
	cmd := Command(true, "mount", "-o", "loop,ro", "a.iso", "/mnt/a")
	if cmd.Args[0] != "sudo" || cmd.Args[1] != "mount" {
		t.Errorf("unexpected args with elevation: %v", cmd.Args)
	}

	cmd = Command(false, "umount", "/mnt/a")
	if cmd.Args[0] != "umount" {
		t.Errorf("unexpected args without elevation: %v", cmd.Args)
	}
}

func TestRequire(t *testing.T) {
	// "sh" exists everywhere this test runs.
	if err := Require("sh"); err != nil {
		t.Errorf("Require(sh) returned an error: %v", err)
	}

	err := Require("definitely-not-a-binary-pxelab")
	if err == nil {
		t.Fatal("Require() with a missing binary did not return an error")
	}
	if code := errors.ExitCode(err); code != 2 {
		t.Errorf("ExitCode = %d, want 2 for a missing binary", code)
	}
}
