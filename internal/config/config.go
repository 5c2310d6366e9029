package config

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the name of the application
	AppName = "pxelab"
	// NetbootXYZBaseURL is the base URL for netboot.xyz boot payloads
	NetbootXYZBaseURL = "https://boot.netboot.xyz/ipxe/"
)

// Payload is a third-party boot payload fetched into the staging tree.
type Payload struct {
	Name string
	URL  string
}

// Payloads lists the downloadable network boot programs staged next to the
// syslinux binaries.
var Payloads = []Payload{
	{Name: "netboot.xyz.kpxe", URL: NetbootXYZBaseURL + "netboot.xyz.kpxe"},
	{Name: "netboot.xyz.efi", URL: NetbootXYZBaseURL + "netboot.xyz.efi"},
}

// BootloaderFiles are the syslinux binaries copied from the host into the
// TFTP root. memdisk boots raw image files.
var BootloaderFiles = []string{"pxelinux.0", "ldlinux.c32", "menu.c32", "libutil.c32", "memdisk"}

// BootloaderSearchDirs lists where distributions install the syslinux
// binaries, in lookup order.
var BootloaderSearchDirs = []string{
	"/usr/lib/PXELINUX",
	"/usr/lib/syslinux/modules/bios",
	"/usr/lib/syslinux",
	"/usr/share/syslinux",
}

// Config holds the application's directory layout.
type Config struct {
	homeDir string
}

// New creates a new Config instance.
var New = func() (*Config, error) {
	var home string
	var err error

	// Check for the override environment variable first.
	// This is useful for testing.
	homeOverride := os.Getenv("PXELAB_HOME")
	if homeOverride != "" {
		home = homeOverride
	} else {
		home, err = os.UserHomeDir()
		if err != nil {
			return nil, err
		}
	}

	return &Config{homeDir: home}, nil
}

// SetHomeDir sets the application's home directory.
func (c *Config) SetHomeDir(dir string) {
	c.homeDir = dir
}

// GetAppDir returns the path to the application's hidden directory.
func (c *Config) GetAppDir() string {
	return filepath.Join(c.homeDir, "."+AppName)
}

// TFTPRoot is the directory served by the TFTP side of dnsmasq.
func (c *Config) TFTPRoot() string {
	return filepath.Join(c.GetAppDir(), "tftp")
}

// PxelinuxCfgDir holds the boot menu and its generated fragments.
func (c *Config) PxelinuxCfgDir() string {
	return filepath.Join(c.TFTPRoot(), "pxelinux.cfg")
}

// PayloadDir holds downloaded third-party boot payloads.
func (c *Config) PayloadDir() string {
	return filepath.Join(c.TFTPRoot(), "nbp")
}

// LinkDir holds symbolic links to kernels, initrds and raw images so they
// are reachable under the TFTP root.
func (c *Config) LinkDir() string {
	return filepath.Join(c.TFTPRoot(), "links")
}

// MountDir holds one mount point directory per loop-mounted medium.
func (c *Config) MountDir() string {
	return filepath.Join(c.GetAppDir(), "mounts")
}

// LogDir holds the dnsmasq log.
func (c *Config) LogDir() string {
	return filepath.Join(c.GetAppDir(), "logs")
}

// DnsmasqConf is the generated dnsmasq configuration file.
func (c *Config) DnsmasqConf() string {
	return filepath.Join(c.GetAppDir(), "dnsmasq.conf")
}

// DnsmasqLog is the file dnsmasq is told to log to.
func (c *Config) DnsmasqLog() string {
	return filepath.Join(c.LogDir(), "dnsmasq.log")
}

// DefaultsFile is the optional YAML file with fallback flag values.
func (c *Config) DefaultsFile() string {
	return filepath.Join(c.GetAppDir(), "defaults.yaml")
}
