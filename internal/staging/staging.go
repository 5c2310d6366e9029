package staging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"pxelab/internal/config"
	"pxelab/internal/downloader"
	"pxelab/internal/errors"
	"pxelab/internal/linker"
	"pxelab/internal/util"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// Prepare builds the staging tree: the directory layout, the syslinux
// binaries copied from the host, and the downloadable boot payloads.
func Prepare(cfg *config.Config) error {
	if err := createDirectories(cfg); err != nil {
		return err
	}
	if err := copyBootloaders(cfg); err != nil {
		return err
	}
	for _, p := range config.Payloads {
		if err := downloader.FetchIfMissing(filepath.Join(cfg.PayloadDir(), p.Name), p.URL); err != nil {
			return errors.E("fetch boot payload", errors.IO, err)
		}
	}
	return nil
}

func createDirectories(cfg *config.Config) error {
	s := newSpinner(" Creating staging tree...")
	s.Start()
	defer s.Stop()

	dirs := []string{
		cfg.TFTPRoot(),
		cfg.PxelinuxCfgDir(),
		cfg.PayloadDir(),
		cfg.LinkDir(),
		cfg.MountDir(),
		cfg.LogDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			s.FinalMSG = color.RedString("✖ Failed to create staging tree.\n")
			return errors.E("create staging tree", errors.IO, err)
		}
	}
	s.FinalMSG = color.GreenString("✔ Staging tree ready.\n")
	return nil
}

// copyBootloaders copies the syslinux binaries into the TFTP root. Already
// staged files are left alone so re-runs are cheap.
func copyBootloaders(cfg *config.Config) error {
	for _, name := range config.BootloaderFiles {
		dst := filepath.Join(cfg.TFTPRoot(), name)
		if util.FileExists(dst) {
			continue
		}
		src, found := FindBootloader(name)
		if !found {
			return errors.WithCode("stage bootloader", errors.ExternalTool, 2,
				fmt.Errorf("%s not found in any of %v. Please install syslinux/pxelinux", name, config.BootloaderSearchDirs))
		}
		if err := util.CopyFile(src, dst, 0644); err != nil {
			return errors.E("stage bootloader", errors.IO, err)
		}
		color.Green("✔ Staged %s", name)
	}
	return nil
}

// FindBootloader is a seam for tests.
var FindBootloader = func(name string) (string, bool) {
	for _, dir := range config.BootloaderSearchDirs {
		src := filepath.Join(dir, name)
		if util.FileExists(src) {
			return src, true
		}
	}
	return "", false
}

// LinkBootFiles links a medium's kernel and initrd into the link directory
// and returns their TFTP-relative paths.
func LinkBootFiles(cfg *config.Config, name, kernel, initrd string) (string, string, error) {
	kernelLink := filepath.Join(cfg.LinkDir(), name+"-vmlinuz")
	initrdLink := filepath.Join(cfg.LinkDir(), name+"-initrd")
	if err := linker.EnsureLink(kernel, kernelLink); err != nil {
		return "", "", err
	}
	if err := linker.EnsureLink(initrd, initrdLink); err != nil {
		return "", "", err
	}
	return "links/" + name + "-vmlinuz", "links/" + name + "-initrd", nil
}

// LinkImage links a raw boot image into the link directory and returns its
// TFTP-relative path.
func LinkImage(cfg *config.Config, name, image string) (string, error) {
	link := filepath.Join(cfg.LinkDir(), name+".img")
	if err := linker.EnsureLink(image, link); err != nil {
		return "", err
	}
	return "links/" + name + ".img", nil
}

// newSpinner builds a spinner that stays quiet when stdout is not a
// terminal (CI, piped output).
func newSpinner(suffix string) *spinner.Spinner {
	var opts []spinner.Option
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		opts = append(opts, spinner.WithWriter(io.Discard))
	}
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, opts...)
	s.Suffix = suffix
	return s
}
