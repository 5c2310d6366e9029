package session

import (
	"bytes"
	"context"
	goerrors "errors"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"pxelab/internal/applog"
	"pxelab/internal/classify"
	"pxelab/internal/config"
	"pxelab/internal/errors"
	"pxelab/internal/exports"
	"pxelab/internal/logwatcher"
	"pxelab/internal/menu"
	"pxelab/internal/mounter"
	"pxelab/internal/netutil"
	"pxelab/internal/runner"
	"pxelab/internal/staging"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// Session drives one provisioning run from network resolution to the
// blocking dnsmasq wait, and owns the cleanup policy. Everything mounted or
// started during the run is released when Run returns, whatever the path
// out.
type Session struct {
	Cfg  *config.Config
	Opts *config.Options

	params         *netutil.Params
	tracker        *mounter.Tracker
	entries        []*menu.Entry
	images         []*menu.ImageEntry
	exportsManaged bool
}

func New(cfg *config.Config, opts *config.Options) *Session {
	return &Session{Cfg: cfg, Opts: opts}
}

// Run executes the full provisioning sequence. Cleanup is deferred so it
// runs on success, fatal error and interrupt alike. A second invocation of
// the process against the same media is expected to be a cheap no-op apart
// from the service launch.
func (s *Session) Run() (err error) {
	s.tracker = mounter.New(s.Opts.Sudo)
	defer func() { s.cleanup(err) }()

	if err = s.checkDependencies(); err != nil {
		return err
	}
	if s.params, err = netutil.Resolve(s.Opts.Interface, s.Opts.Address, s.Opts.Netmask); err != nil {
		return err
	}
	color.Cyan("i Serving on %s netmask %s", s.params.Address, s.params.Netmask)

	if err = staging.Prepare(s.Cfg); err != nil {
		return err
	}
	if err = s.prepareMedia(); err != nil {
		return err
	}
	s.printSummary()
	if err = s.generateConfig(); err != nil {
		return err
	}
	if err = s.reconcileExports(); err != nil {
		return err
	}

	// Validate the generated configuration before the real run.
	if err = runner.Run(runner.Command(s.Opts.Sudo, "dnsmasq", "--test", "--conf-file="+s.Cfg.DnsmasqConf())); err != nil {
		return err
	}
	if s.Opts.DryRun {
		color.Cyan("i Dry run, not launching dnsmasq.")
		return nil
	}
	return s.serve()
}

func (s *Session) checkDependencies() error {
	deps := []string{"dnsmasq"}
	for _, path := range s.Opts.Media {
		if strings.EqualFold(filepath.Ext(path), ".iso") {
			deps = append(deps, "mount", "umount")
			break
		}
	}
	if s.Opts.ManageExports {
		deps = append(deps, "systemctl", "exportfs")
	}
	if s.Opts.Sudo {
		deps = append(deps, "sudo")
	}
	return runner.Require(deps...)
}

// prepareMedia mounts, classifies and links every medium. A failing medium
// aborts the whole run; media are not isolated from each other.
func (s *Session) prepareMedia() error {
	for _, path := range s.Opts.Media {
		target, err := classify.ClassifyPath(path)
		if err != nil {
			return err
		}

		abs, err := filepath.Abs(target.Path)
		if err != nil {
			return errors.E("classify media", errors.IO, err)
		}

		if target.Kind == classify.ImgFile {
			rel, err := staging.LinkImage(s.Cfg, target.Name, abs)
			if err != nil {
				return err
			}
			s.images = append(s.images, &menu.ImageEntry{Name: target.Name, Image: rel})
			continue
		}

		root := abs
		if target.Kind == classify.IsoImage {
			dir := filepath.Join(s.Cfg.MountDir(), target.Name)
			m, err := s.tracker.Mount(abs, dir)
			if err != nil {
				return err
			}
			root = m.Dir
		}

		variant := classify.Classify(root)
		bf, err := classify.LocateBootFiles(root, variant, target.Name)
		if err != nil {
			return err
		}
		kernelRel, initrdRel, err := staging.LinkBootFiles(s.Cfg, target.Name, bf.Kernel, bf.Initrd)
		if err != nil {
			return err
		}

		s.entries = append(s.entries, &menu.Entry{
			Name:    target.Name,
			Server:  s.params,
			Kernel:  kernelRel,
			Initrd:  initrdRel,
			Root:    root,
			Variant: variant,
			Kind:    target.Kind,
		})
	}
	return nil
}

func (s *Session) printSummary() {
	if len(s.entries) == 0 && len(s.images) == 0 {
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"NAME", "TYPE", "VARIANT", "KERNEL", "ROOT"})
	for _, e := range s.entries {
		table.Append([]string{e.Name, e.Kind.String(), e.Variant.String(), e.Kernel, e.Root})
	}
	for _, ie := range s.images {
		table.Append([]string{ie.Name, "image", "memdisk", ie.Image, "N/A"})
	}
	table.Render()
}

// generateConfig fully regenerates the three menu fragments and the dnsmasq
// configuration. Nothing is incremental.
func (s *Session) generateConfig() error {
	var isoBuf, dirBuf, imgBuf bytes.Buffer
	for _, e := range s.entries {
		text, err := menu.Render(e, s.Opts.Keymaps)
		if err != nil {
			return err
		}
		if e.Kind == classify.IsoDirectory {
			dirBuf.WriteString(text)
		} else {
			isoBuf.WriteString(text)
		}
	}
	for _, ie := range s.images {
		text, err := menu.RenderImage(ie)
		if err != nil {
			return err
		}
		imgBuf.WriteString(text)
	}
	if err := menu.WriteFragments(s.Cfg.PxelinuxCfgDir(), isoBuf.String(), dirBuf.String(), imgBuf.String()); err != nil {
		return err
	}

	conf, err := menu.Dnsmasq(s.params, s.Cfg.TFTPRoot(), s.Cfg.DnsmasqLog())
	if err != nil {
		return err
	}
	return menu.WriteFile(s.Cfg.DnsmasqConf(), conf)
}

func (s *Session) reconcileExports() error {
	if !s.Opts.ManageExports {
		return nil
	}
	network, err := s.params.Network()
	if err != nil {
		return err
	}
	dirs := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		dirs = append(dirs, e.Root)
	}
	if err := exports.Reconcile(exports.Desired(dirs, network), s.Opts.Sudo); err != nil {
		return err
	}
	s.exportsManaged = true
	return nil
}

// serveCommand is a seam for tests.
var serveCommand = func(sudo bool, confFile string) *exec.Cmd {
	return runner.Command(sudo, "dnsmasq", "--no-daemon", "--conf-file="+confFile)
}

// serve launches dnsmasq in the foreground and blocks until it exits or the
// user interrupts. An interrupt is a normal stop request, not a failure.
func (s *Session) serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := serveCommand(s.Opts.Sudo, s.Cfg.DnsmasqConf())
	if err := cmd.Start(); err != nil {
		return errors.E("dnsmasq", errors.ExternalTool, err)
	}
	color.Green("✔ dnsmasq running on %s. Press Ctrl+C to stop.", s.params.Address)

	go func() { _ = logwatcher.Stream(ctx, s.Cfg.DnsmasqLog()) }()

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		color.Yellow("\ni Interrupt received, shutting down.")
		_ = cmd.Process.Signal(syscall.SIGTERM)
		<-waitCh
		return nil
	case err := <-waitCh:
		if err != nil {
			code := 1
			var ee *exec.ExitError
			if goerrors.As(err, &ee) && ee.ExitCode() > 0 {
				code = ee.ExitCode()
			}
			return errors.WithCode("dnsmasq", errors.ExternalTool, code, err)
		}
		return nil
	}
}

// cleanup releases everything the run acquired. Release failures are
// reported as warnings and never override the run's own error.
func (s *Session) cleanup(runErr error) {
	failures := s.tracker.ReleaseAll()
	for _, f := range failures {
		applog.Log.Debug().Str("dir", f.Mount.Dir).Err(f.Err).Msg("release failed")
	}
	if runErr != nil && s.exportsManaged {
		// Do not leave the NFS service half-driven behind a failed run.
		if err := exports.Service("stop", s.Opts.Sudo); err != nil {
			color.Yellow("! Warning: could not stop NFS service: %v", err)
		}
	}
}
