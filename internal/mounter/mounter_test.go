package mounter

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"pxelab/internal/errors"
	"pxelab/internal/runner"
)

// mockCommands records every mount/umount invocation and lets a test fail
// selected ones, the way the command-level seams are mocked elsewhere in
// this repo.
type mockCommands struct {
	calls    []string
	failWhen func(call string) bool
}

func install(t *testing.T, m *mockCommands) {
	origRun := runner.Run
	origMounted := mounted
	t.Cleanup(func() {
		runner.Run = origRun
		mounted = origMounted
	})

	mountedDirs := map[string]bool{}
	runner.Run = func(cmd *exec.Cmd) error {
		call := strings.Join(cmd.Args, " ")
		m.calls = append(m.calls, call)
		if m.failWhen != nil && m.failWhen(call) {
			return errors.WithCode(cmd.Args[0], errors.ExternalTool, 32,
				fmt.Errorf("command failed: %s", call))
		}
		if cmd.Args[0] == "mount" {
			mountedDirs[cmd.Args[len(cmd.Args)-1]] = true
		}
		if cmd.Args[0] == "umount" {
			delete(mountedDirs, cmd.Args[1])
		}
		return nil
	}
	mounted = func(dir string) (bool, error) { return mountedDirs[dir], nil }
}

func (m *mockCommands) count(prefix string) int {
	n := 0
	for _, c := range m.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func sources(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	var paths []string
	for _, n := range names {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, nil, 0644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	return paths
}

func TestMountRejectsMissingSource(t *testing.T) {
	install(t, &mockCommands{})
	tr := New(false)

	_, err := tr.Mount(filepath.Join(t.TempDir(), "absent.iso"), filepath.Join(t.TempDir(), "mnt"))
	if err == nil {
		t.Fatal("expected an error for a missing source")
	}
	if !errors.IsKind(err, errors.MediaLayout) {
		t.Errorf("expected a MediaLayout error, got %v", err)
	}
}

func TestMountRejectsWhitespaceMountPoint(t *testing.T) {
	install(t, &mockCommands{})
	tr := New(false)
	srcs := sources(t, t.TempDir(), "a.iso")

	_, err := tr.Mount(srcs[0], filepath.Join(t.TempDir(), "has space"))
	if err == nil {
		t.Fatal("expected an error for a whitespace mount point")
	}
	if !errors.IsKind(err, errors.Config) {
		t.Errorf("expected a Config error, got %v", err)
	}
	if len(tr.Live()) != 0 {
		t.Errorf("a rejected mount must not be tracked")
	}
}

func TestMountRecordsBeforeCheckingResult(t *testing.T) {
	m := &mockCommands{failWhen: func(call string) bool {
		return strings.HasPrefix(call, "mount")
	}}
	install(t, m)
	tr := New(false)
	srcs := sources(t, t.TempDir(), "a.iso")

	_, err := tr.Mount(srcs[0], filepath.Join(t.TempDir(), "mnt"))
	if err == nil {
		t.Fatal("expected the mount failure to propagate")
	}
	// The failed mount must still be in the live set so cleanup sees it.
	if len(tr.Live()) != 1 {
		t.Fatalf("live set has %d entries, want 1", len(tr.Live()))
	}
}

func TestReleaseAllContinuesPastFailures(t *testing.T) {
	base := t.TempDir()
	srcs := sources(t, base, "a.iso", "b.iso", "c.iso")

	badDir := filepath.Join(base, "b")
	m := &mockCommands{failWhen: func(call string) bool {
		return call == "umount "+badDir
	}}
	install(t, m)

	tr := New(false)
	for i, name := range []string{"a", "b", "c"} {
		if _, err := tr.Mount(srcs[i], filepath.Join(base, name)); err != nil {
			t.Fatal(err)
		}
	}

	failures := tr.ReleaseAll()

	// The failing middle resource must not stop the others.
	if got := m.count("umount"); got != 5 { // a:1, b:3 retries, c:1
		t.Errorf("umount called %d times, want 5 (including retries)", got)
	}
	if len(failures) != 1 {
		t.Fatalf("got %d failures, want exactly 1: %+v", len(failures), failures)
	}
	if failures[0].Mount.Dir != filepath.Join(base, "b") {
		t.Errorf("failure names %q, want the second resource", failures[0].Mount.Dir)
	}
}

func TestReleaseAllSkipsNeverMounted(t *testing.T) {
	m := &mockCommands{failWhen: func(call string) bool {
		return strings.HasPrefix(call, "mount")
	}}
	install(t, m)

	base := t.TempDir()
	srcs := sources(t, base, "a.iso")
	tr := New(false)
	_, _ = tr.Mount(srcs[0], filepath.Join(base, "a"))

	failures := tr.ReleaseAll()
	if len(failures) != 0 {
		t.Errorf("a never-mounted resource must not be reported: %+v", failures)
	}
	if got := m.count("umount"); got != 0 {
		t.Errorf("umount called %d times for a never-mounted resource", got)
	}
}

func TestReleaseAllRunsOnce(t *testing.T) {
	m := &mockCommands{}
	install(t, m)

	base := t.TempDir()
	srcs := sources(t, base, "a.iso")
	tr := New(false)
	if _, err := tr.Mount(srcs[0], filepath.Join(base, "a")); err != nil {
		t.Fatal(err)
	}

	tr.ReleaseAll()
	first := m.count("umount")
	tr.ReleaseAll()
	if got := m.count("umount"); got != first {
		t.Errorf("second ReleaseAll() ran commands again: %d -> %d", first, got)
	}
}

func TestMountUsesSudoWhenRequested(t *testing.T) {
	m := &mockCommands{}
	install(t, m)

	base := t.TempDir()
	srcs := sources(t, base, "a.iso")
	tr := New(true)
	if _, err := tr.Mount(srcs[0], filepath.Join(base, "a")); err != nil {
		t.Fatal(err)
	}
	if m.count("sudo mount") != 1 {
		t.Errorf("expected the mount to run through sudo, calls: %v", m.calls)
	}
}
