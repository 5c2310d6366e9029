package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Options is the immutable per-run configuration assembled once from the
// command line and the defaults file, then passed to every component.
type Options struct {
	Media         []string
	Interface     string
	Address       string
	Netmask       string
	Keymaps       []string
	ManageExports bool
	Sudo          bool
	DryRun        bool
}

// Defaults are optional fallback values read from defaults.yaml in the app
// directory. Command-line flags always win.
type Defaults struct {
	Interface     string   `yaml:"interface"`
	Keymaps       []string `yaml:"keymaps"`
	Sudo          bool     `yaml:"sudo"`
	ManageExports bool     `yaml:"manage_exports"`
}

// LoadDefaults reads the defaults file. A missing file yields zero defaults.
var LoadDefaults = func(c *Config) (*Defaults, error) {
	data, err := os.ReadFile(c.DefaultsFile())
	if os.IsNotExist(err) {
		return &Defaults{}, nil
	}
	if err != nil {
		return nil, err
	}
	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
