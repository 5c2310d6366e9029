package classify

import (
	"os"
	"path/filepath"
	"strings"

	"pxelab/internal/errors"
)

// TargetKind distinguishes the three kinds of user-supplied boot media.
type TargetKind int

const (
	// IsoImage is an ISO file that gets loop-mounted.
	IsoImage TargetKind = iota
	// ImgFile is a raw boot image, booted through memdisk without mounting.
	ImgFile
	// IsoDirectory is an already-extracted image tree used in place.
	IsoDirectory
)

func (k TargetKind) String() string {
	switch k {
	case IsoImage:
		return "iso"
	case ImgFile:
		return "image"
	default:
		return "directory"
	}
}

// BootTarget is one user-supplied medium, classified once from its
// filesystem type and extension.
type BootTarget struct {
	Kind TargetKind
	Path string
	// Name is the human-readable name everything derived from this medium
	// (mount point, links, menu labels) is named after.
	Name string
}

// ClassifyPath decides what kind of boot medium a path is.
func ClassifyPath(path string) (*BootTarget, error) {
	const op = "classify media"

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.E(op, errors.MediaLayout, err)
	}

	base := filepath.Base(filepath.Clean(path))
	if info.IsDir() {
		return &BootTarget{Kind: IsoDirectory, Path: path, Name: base}, nil
	}

	ext := strings.ToLower(filepath.Ext(base))
	name := strings.TrimSuffix(base, filepath.Ext(base))
	switch ext {
	case ".iso":
		return &BootTarget{Kind: IsoImage, Path: path, Name: name}, nil
	case ".img":
		return &BootTarget{Kind: ImgFile, Path: path, Name: name}, nil
	}
	return nil, errors.Ef(op, errors.MediaLayout,
		"%s is neither a directory, an .iso nor an .img file", path)
}
