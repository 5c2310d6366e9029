package classify

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"pxelab/internal/errors"
	"pxelab/internal/util"

	"github.com/fatih/color"
)

// Variant selects the boot-parameter template for a mounted medium.
type Variant int

const (
	Arch Variant = iota
	DebianLive
	// UbuntuOrUnknown is the fallback; it covers Ubuntu derivatives and
	// unrecognized layouts, best effort.
	UbuntuOrUnknown
)

func (v Variant) String() string {
	switch v {
	case Arch:
		return "arch"
	case DebianLive:
		return "debian-live"
	default:
		return "ubuntu-or-unknown"
	}
}

// Classify inspects a mounted root directory and decides which variant it
// is. The order is fixed so ambiguous media resolve deterministically: an
// Arch layout wins over a Debian Live one.
func Classify(root string) Variant {
	if util.DirExists(filepath.Join(root, "arch", "boot", "x86_64")) {
		return Arch
	}
	if util.DirExists(filepath.Join(root, "live")) &&
		(util.DirExists(filepath.Join(root, "d-i")) || util.FileExists(filepath.Join(root, "DEBIAN_CUSTOM"))) {
		return DebianLive
	}
	return UbuntuOrUnknown
}

// BootFiles are the kernel and initrd located inside a mounted medium.
type BootFiles struct {
	Kernel string
	Initrd string
}

// bootPatterns lists, per variant and in priority order, the globs tried
// against the mounted root. The first pattern with at least one match wins.
var bootPatterns = map[Variant]struct{ kernel, initrd []string }{
	Arch: {
		kernel: []string{"arch/boot/x86_64/vmlinuz*"},
		initrd: []string{"arch/boot/x86_64/initramfs*.img", "arch/boot/x86_64/archiso.img"},
	},
	DebianLive: {
		kernel: []string{"live/vmlinuz*"},
		initrd: []string{"live/initrd*"},
	},
	UbuntuOrUnknown: {
		kernel: []string{"casper/vmlinuz*", "live/vmlinuz*", "boot/vmlinuz*", "vmlinuz*"},
		initrd: []string{"casper/initrd*", "live/initrd*", "boot/initrd*", "initrd*"},
	},
}

// LocateBootFiles finds the kernel and initrd for a classified medium.
func LocateBootFiles(root string, v Variant, mediaName string) (*BootFiles, error) {
	pats := bootPatterns[v]
	kernel, err := firstMatch(root, pats.kernel, "kernel", mediaName)
	if err != nil {
		return nil, err
	}
	initrd, err := firstMatch(root, pats.initrd, "initrd", mediaName)
	if err != nil {
		return nil, err
	}
	return &BootFiles{Kernel: kernel, Initrd: initrd}, nil
}

func firstMatch(root string, patterns []string, what, mediaName string) (string, error) {
	for _, pat := range patterns {
		matches, err := filepath.Glob(filepath.Join(root, pat))
		if err != nil || len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		if len(matches) > 1 {
			color.Yellow("! Warning: %d %s candidates in %s, using %s", len(matches), what, mediaName, matches[0])
		}
		return matches[0], nil
	}
	return "", errors.Ef("locate boot files", errors.MediaLayout,
		"no %s found in %s (tried %s)", what, mediaName, strings.Join(patterns, ", "))
}

var nonWord = regexp.MustCompile(`\W`)

// MenuLabel derives a syntactically valid boot menu identifier from a
// human-readable media name.
func MenuLabel(name string) string {
	return nonWord.ReplaceAllString(name, "")
}
