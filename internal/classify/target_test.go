package classify

import (
	"os"
	"path/filepath"
	"testing"

	"pxelab/internal/errors"
)

func TestClassifyPath(t *testing.T) {
	dir := t.TempDir()
	iso := filepath.Join(dir, "ubuntu-24.04.iso")
	img := filepath.Join(dir, "Rescue.IMG")
	other := filepath.Join(dir, "notes.txt")
	for _, f := range []string{iso, img, other} {
		if err := os.WriteFile(f, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name     string
		path     string
		wantKind TargetKind
		wantName string
		wantErr  bool
	}{
		{name: "iso file", path: iso, wantKind: IsoImage, wantName: "ubuntu-24.04"},
		{name: "img file, case-insensitive extension", path: img, wantKind: ImgFile, wantName: "Rescue"},
		{name: "directory", path: dir, wantKind: IsoDirectory, wantName: filepath.Base(dir)},
		{name: "unsupported file", path: other, wantErr: true},
		{name: "missing path", path: filepath.Join(dir, "nope.iso"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := ClassifyPath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				if !errors.IsKind(err, errors.MediaLayout) {
					t.Errorf("expected a MediaLayout error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ClassifyPath() returned an error: %v", err)
			}
			if target.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", target.Kind, tt.wantKind)
			}
			if target.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", target.Name, tt.wantName)
			}
		})
	}
}
