package main

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pageinfo/config"
	"pageinfo/control"
	"pageinfo/process"
	"pageinfo/process_dump"
	"pageinfo/session"
)

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the control socket until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	finder, err := newFinder(cfg)
	if err != nil {
		return err
	}

	svc := session.NewService(finder)
	defer svc.Close()

	mode, err := cfg.Mode()
	if err != nil {
		return err
	}

	srv := control.NewServer(svc)
	if err := srv.Listen(cfg.Socket, mode); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infoln("pageinfod", version, "ready")
	err = srv.Serve(ctx)
	srv.Close()

	if errors.Is(err, control.ErrServerClosed) {
		log.Infoln("Shutting down")
		return nil
	}
	return err
}

// newFinder serves snapshots when a snapshot directory is configured and
// live processes otherwise.
func newFinder(cfg config.Config) (process.ProcessFinder, error) {
	if cfg.SnapshotDir != "" {
		log.Infoln("Serving snapshots from", cfg.SnapshotDir)
		return process_dump.NewFinder(cfg.SnapshotDir), nil
	}
	return newLiveFinder(cfg.KPageFlags)
}
