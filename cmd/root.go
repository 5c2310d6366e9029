package cmd

import (
	"os"
	"strings"

	"pxelab/internal/config"
	"pxelab/internal/errors"
	"pxelab/internal/session"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	flagInterface     string
	flagAddress       string
	flagNetmask       string
	flagKeymaps       string
	flagManageExports bool
	flagSudo          bool
	flagDryRun        bool
)

var rootCmd = &cobra.Command{
	Use:   "pxelab [flags] MEDIA...",
	Short: "pxelab serves boot media over PXE for one session",
	Long: `pxelab provisions an ephemeral network boot environment from the given
boot media (ISO images, extracted-ISO directories, raw boot images): it
stages bootloaders into a TFTP root, loop-mounts and classifies each medium,
generates the boot menu and dnsmasq configuration, optionally maintains the
NFS export table, and runs dnsmasq in the foreground until interrupted.
Everything mounted during the run is released on exit.`,
	Args: cobra.MinimumNArgs(1),
	// SilenceErrors is used to prevent cobra from printing the error,
	// as we handle it ourselves in the Execute function.
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}
		opts, err := buildOptions(cfg, args)
		if err != nil {
			return err
		}
		return session.New(cfg, opts).Run()
	},
}

// buildOptions merges flags over the optional defaults file into the single
// immutable Options value the rest of the program reads.
func buildOptions(cfg *config.Config, media []string) (*config.Options, error) {
	defaults, err := config.LoadDefaults(cfg)
	if err != nil {
		return nil, err
	}

	opts := &config.Options{
		Media:         media,
		Interface:     flagInterface,
		Address:       flagAddress,
		Netmask:       flagNetmask,
		ManageExports: flagManageExports || defaults.ManageExports,
		Sudo:          flagSudo || defaults.Sudo,
		DryRun:        flagDryRun,
	}
	if opts.Interface == "" {
		opts.Interface = defaults.Interface
	}
	opts.Keymaps = splitKeymaps(flagKeymaps)
	if len(opts.Keymaps) == 0 {
		opts.Keymaps = defaults.Keymaps
	}
	return opts, nil
}

func splitKeymaps(s string) []string {
	var keymaps []string
	for _, km := range strings.Split(s, ",") {
		km = strings.TrimSpace(km)
		if km != "" {
			keymaps = append(keymaps, km)
		}
	}
	return keymaps
}

func init() {
	rootCmd.Flags().StringVarP(&flagInterface, "interface", "i", "", "network interface to serve on")
	rootCmd.Flags().StringVarP(&flagAddress, "address", "a", "", "explicit IPv4 address (requires --netmask)")
	rootCmd.Flags().StringVarP(&flagNetmask, "netmask", "m", "", "explicit IPv4 netmask")
	rootCmd.Flags().StringVarP(&flagKeymaps, "keymaps", "k", "", "comma-separated keymap variants, e.g. \"us,it\"")
	rootCmd.Flags().BoolVar(&flagManageExports, "manage-exports", false, "rewrite the NFS export table and drive the NFS service")
	rootCmd.Flags().BoolVar(&flagSudo, "sudo", false, "run privileged operations through sudo")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "prepare and validate everything but do not launch dnsmasq")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// color.Error is a pre-configured Color object that writes to os.Stderr in red
		color.Red("Error: %v\n", err)
		os.Exit(errors.ExitCode(err))
	}
}
