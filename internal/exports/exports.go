package exports

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pxelab/internal/applog"
	"pxelab/internal/errors"
	"pxelab/internal/runner"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Path is the persisted export table. Variable so tests can redirect it.
var Path = "/etc/exports"

// ServiceName is the NFS server unit driven around export rewrites.
var ServiceName = "nfs-server"

// lineOptions is the fixed option set applied to every export line.
const lineOptions = "ro,sync,no_subtree_check,no_root_squash"

const header = "# Maintained by pxelab. Manual changes will be overwritten.\n"

// Line renders one export table line.
func Line(dir, network string) string {
	return fmt.Sprintf("%s %s(%s)\n", dir, network, lineOptions)
}

// Desired builds the full desired export table text for the given exported
// directories, all restricted to the server's network.
func Desired(dirs []string, network string) string {
	var b strings.Builder
	b.WriteString(header)
	for _, d := range dirs {
		b.WriteString(Line(d, network))
	}
	return b.String()
}

// Service controls the NFS server unit. Variable so tests can intercept it.
var Service = func(action string, sudo bool) error {
	return runner.Run(runner.Command(sudo, "systemctl", action, ServiceName))
}

// Reconcile makes the persisted export table match desired, disturbing the
// NFS service as little as possible: a byte-identical table is not
// rewritten. The service is always left started on the success path.
func Reconcile(desired string, sudo bool) error {
	const op = "reconcile exports"

	if err := Service("stop", sudo); err != nil {
		return err
	}

	current, err := os.ReadFile(Path)
	if err != nil && !os.IsNotExist(err) {
		// Partial export state cannot be safely assumed.
		return errors.E(op, errors.IO, err)
	}

	if string(current) == desired {
		applog.Log.Debug().Str("path", Path).Msg("export table unchanged")
	} else {
		if err := write(desired, sudo); err != nil {
			return err
		}
		color.Green("✔ Export table updated.")
	}

	if err := runner.Run(runner.Command(sudo, "exportfs", "-ra")); err != nil {
		return err
	}
	return Service("start", sudo)
}

// write tries a direct write first and falls back to an escalated copy of a
// private temporary file when the table is not writable by this user.
func write(desired string, sudo bool) error {
	const op = "write exports"

	err := os.WriteFile(Path, []byte(desired), 0644)
	if err == nil {
		return nil
	}
	if !os.IsPermission(err) || !sudo {
		return errors.E(op, errors.IO, err)
	}

	tmp := filepath.Join(os.TempDir(), "pxelab-exports-"+uuid.New().String())
	if err := os.WriteFile(tmp, []byte(desired), 0600); err != nil {
		return errors.E(op, errors.IO, err)
	}
	defer os.Remove(tmp)

	return runner.Run(runner.Command(true, "cp", tmp, Path))
}
