package menu

import (
	"os"
	"path/filepath"

	"pxelab/internal/errors"
)

// Fragment file names inside pxelinux.cfg, one per media group.
const (
	IsoFragment = "iso.menu"
	DirFragment = "dir.menu"
	ImgFragment = "img.menu"
)

// defaultMenu is the static menu header. It pulls in the three generated
// fragment files so the menu survives empty groups.
const defaultMenu = `DEFAULT menu.c32
PROMPT 0
TIMEOUT 300
ONTIMEOUT local

MENU TITLE pxelab network boot

LABEL local
	MENU LABEL Boot from local disk
	LOCALBOOT 0

INCLUDE pxelinux.cfg/` + IsoFragment + `
INCLUDE pxelinux.cfg/` + DirFragment + `
INCLUDE pxelinux.cfg/` + ImgFragment + `
`

// WriteFile replaces a generated file and widens its permission bits so the
// boot service can read it when running as a less privileged user.
// os.WriteFile's mode is masked by the umask, hence the explicit chmod.
func WriteFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.E("write generated config", errors.IO, err)
	}
	if err := os.Chmod(path, 0644); err != nil {
		return errors.E("write generated config", errors.IO, err)
	}
	return nil
}

// WriteFragments fully replaces the three boot menu fragments and the static
// menu header in cfgDir.
func WriteFragments(cfgDir, isoText, dirText, imgText string) error {
	for _, f := range []struct{ name, content string }{
		{"default", defaultMenu},
		{IsoFragment, isoText},
		{DirFragment, dirText},
		{ImgFragment, imgText},
	} {
		if err := WriteFile(filepath.Join(cfgDir, f.name), f.content); err != nil {
			return err
		}
	}
	return nil
}
