package linker

import (
	"os"

	"pxelab/internal/errors"
)

// EnsureLink makes linkPath a symbolic link pointing at targetPath. A link
// that already points at the target is left alone, a link pointing elsewhere
// is replaced. Existing non-link data is never touched; the tool is re-run
// against the same working directory and must not destroy anything it does
// not own.
func EnsureLink(targetPath, linkPath string) error {
	const op = "ensure link"

	info, err := os.Lstat(linkPath)
	switch {
	case err == nil && info.Mode()&os.ModeSymlink != 0:
		dest, err := os.Readlink(linkPath)
		if err != nil {
			return errors.E(op, errors.IO, err)
		}
		if dest == targetPath {
			return nil
		}
		if err := os.Remove(linkPath); err != nil {
			return errors.E(op, errors.IO, err)
		}
	case err == nil:
		return errors.Ef(op, errors.Conflict,
			"%s exists and is not a symbolic link, refusing to replace it", linkPath)
	case !os.IsNotExist(err):
		return errors.E(op, errors.IO, err)
	}

	if err := os.Symlink(targetPath, linkPath); err != nil {
		return errors.E(op, errors.IO, err)
	}
	return nil
}
