package mounter

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"pxelab/internal/applog"
	"pxelab/internal/errors"
	"pxelab/internal/runner"

	"github.com/avast/retry-go"
	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/moby/sys/mountinfo"
)

// Mount is one loop-mounted boot image tracked for release.
type Mount struct {
	Source string
	Dir    string
}

// Failure pairs a resource with the error that kept it mounted.
type Failure struct {
	Mount Mount
	Err   error
}

// Tracker owns every loop mount created during a run. Its live set is the
// sole record of what must be released on the way out, whatever the reason
// the process is ending.
type Tracker struct {
	sudo bool
	live []Mount
	once sync.Once
}

func New(sudo bool) *Tracker {
	return &Tracker{sudo: sudo}
}

// mounted is a seam for tests.
var mounted = mountinfo.Mounted

// Mount loop-mounts source read-only at dir and records it for release.
// The resource is recorded before the mount's outcome is checked, so a
// failed-but-partially-created mount still gets cleaned up.
func (t *Tracker) Mount(source, dir string) (*Mount, error) {
	const op = "mount media"

	if _, err := os.Stat(source); err != nil {
		return nil, errors.E(op, errors.MediaLayout, err)
	}
	// The loop mount command cannot handle whitespace in the mount point.
	if strings.ContainsAny(dir, " \t\n") {
		return nil, errors.Ef(op, errors.Config,
			"mount point %q contains whitespace; rename the media", dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.E(op, errors.IO, err)
	}

	m := Mount{Source: source, Dir: dir}
	if ok, _ := mounted(dir); ok {
		applog.Log.Debug().Str("dir", dir).Msg("already mounted, reusing")
		t.live = append(t.live, m)
		return &m, nil
	}

	t.live = append(t.live, m)
	if err := runner.Run(runner.Command(t.sudo, "mount", "-o", "loop,ro", source, dir)); err != nil {
		return nil, err
	}
	applog.Log.Debug().Str("source", source).Str("dir", dir).Msg("mounted")
	return &m, nil
}

// Live returns the tracked resources in mount order.
func (t *Tracker) Live() []Mount {
	return t.live
}

// ReleaseAll unmounts every tracked resource, in the order they were
// mounted. It never aborts early: a failed unmount is recorded and the rest
// are still released. It runs at most once per process; later calls return
// nil without touching anything.
func (t *Tracker) ReleaseAll() []Failure {
	var failures []Failure
	t.once.Do(func() { failures = t.releaseAll() })
	return failures
}

func (t *Tracker) releaseAll() []Failure {
	var failures []Failure
	var errs *multierror.Error

	for _, m := range t.live {
		if ok, err := mounted(m.Dir); err == nil && !ok {
			// Recorded but never actually mounted, or released by
			// an earlier run. Only the directory is left.
			_ = os.Remove(m.Dir)
			continue
		}

		err := retry.Do(
			func() error {
				return runner.Run(runner.Command(t.sudo, "umount", m.Dir))
			},
			retry.Attempts(3),
			retry.Delay(500*time.Millisecond),
			retry.DelayType(retry.FixedDelay),
		)
		if err != nil {
			failures = append(failures, Failure{Mount: m, Err: err})
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", m.Dir, err))
			continue
		}
		applog.Log.Debug().Str("dir", m.Dir).Msg("unmounted")
		// A leftover non-empty directory is not worth failing over.
		_ = os.Remove(m.Dir)
	}

	if errs.ErrorOrNil() != nil {
		color.Yellow("! Warning: some mounted resources could not be released:\n%v", errs)
	}
	return failures
}
