package main

import (
	"fmt"
	"os"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/spf13/cobra"

	"pageinfo/config"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "pageinfod"))

type options struct {
	configPath  string
	socket      string
	snapshotDir string
	kpageflags  bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "pageinfod",
		Short:         "Serve page and dentry queries over the control socket",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	flags.StringVar(&opts.socket, "socket", "", "control socket path (default "+config.DefaultSocket+")")
	flags.StringVar(&opts.snapshotDir, "snapshot-dir", "", "serve snapshots from this directory instead of live processes")
	flags.BoolVar(&opts.kpageflags, "kpageflags", true, "read page flags from /proc/kpageflags when permitted")

	root.AddCommand(
		newServeCommand(opts),
		newSnapshotCommand(opts),
		newShowCommand(),
		newVersionCommand(),
	)
	return root
}

// loadConfig applies command line flags over the config file.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("socket") {
		cfg.Socket = opts.socket
	}
	if flags.Changed("snapshot-dir") {
		cfg.SnapshotDir = opts.snapshotDir
	}
	if flags.Changed("kpageflags") {
		cfg.KPageFlags = opts.kpageflags
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "pageinfod", version)
		},
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
