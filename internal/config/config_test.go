package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetAppDirUsesHomeOverride(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("PXELAB_HOME", tmpHome)

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() returned an error: %v", err)
	}

	expected := filepath.Join(tmpHome, "."+AppName)
	if cfg.GetAppDir() != expected {
		t.Errorf("GetAppDir() = %v, want %v", cfg.GetAppDir(), expected)
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := &Config{}
	cfg.SetHomeDir("/home/x")
	app := filepath.Join("/home/x", "."+AppName)

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"tftp root", cfg.TFTPRoot(), filepath.Join(app, "tftp")},
		{"pxelinux.cfg", cfg.PxelinuxCfgDir(), filepath.Join(app, "tftp", "pxelinux.cfg")},
		{"payloads", cfg.PayloadDir(), filepath.Join(app, "tftp", "nbp")},
		{"links", cfg.LinkDir(), filepath.Join(app, "tftp", "links")},
		{"mounts", cfg.MountDir(), filepath.Join(app, "mounts")},
		{"dnsmasq conf", cfg.DnsmasqConf(), filepath.Join(app, "dnsmasq.conf")},
		{"dnsmasq log", cfg.DnsmasqLog(), filepath.Join(app, "logs", "dnsmasq.log")},
		{"defaults file", cfg.DefaultsFile(), filepath.Join(app, "defaults.yaml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	tmpHome := t.TempDir()
	cfg := &Config{}
	cfg.SetHomeDir(tmpHome)

	// Missing file yields zero defaults.
	d, err := LoadDefaults(cfg)
	if err != nil {
		t.Fatalf("LoadDefaults() with no file returned an error: %v", err)
	}
	if d.Interface != "" || len(d.Keymaps) != 0 || d.Sudo || d.ManageExports {
		t.Errorf("expected zero defaults, got %+v", d)
	}

	if err := os.MkdirAll(cfg.GetAppDir(), 0755); err != nil {
		t.Fatal(err)
	}
	content := "interface: eth1\nkeymaps: [us, it]\nsudo: true\nmanage_exports: true\n"
	if err := os.WriteFile(cfg.DefaultsFile(), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	d, err = LoadDefaults(cfg)
	if err != nil {
		t.Fatalf("LoadDefaults() returned an error: %v", err)
	}
	if d.Interface != "eth1" {
		t.Errorf("Interface = %q, want eth1", d.Interface)
	}
	if len(d.Keymaps) != 2 || d.Keymaps[0] != "us" || d.Keymaps[1] != "it" {
		t.Errorf("Keymaps = %v, want [us it]", d.Keymaps)
	}
	if !d.Sudo || !d.ManageExports {
		t.Errorf("expected sudo and manage_exports to be true, got %+v", d)
	}
}
