package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"pageinfo/process"
	"pageinfo/process_dump"
)

func newSnapshotCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <pid> <dir>",
		Short: "Capture a live process into <dir>/<pid> for --snapshot-dir",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := parsePID(args[0])
			if err != nil {
				return err
			}

			kpageflags := opts.kpageflags
			if !cmd.Flags().Changed("kpageflags") {
				cfg, err := loadConfig(cmd, opts)
				if err != nil {
					return err
				}
				kpageflags = cfg.KPageFlags
			}

			dirname := filepath.Join(args[1], strconv.Itoa(int(pid)))
			if err := saveSnapshot(pid, dirname, kpageflags); err != nil {
				return fmt.Errorf("snapshot of pid %d: %w", pid, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved pid %d to %s\n", pid, dirname)
			return nil
		},
	}
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <snapshot>",
		Short: "Print the contents of a snapshot directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dump, err := process_dump.Load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Process Name: %s\n", dump.Name)
			fmt.Fprintf(out, "PID: %d\n", dump.PID)
			if dump.Kernel {
				fmt.Fprintln(out, "Kernel thread, no memory map")
				return nil
			}

			fmt.Fprintf(out, "Memory Regions: %d\n", len(dump.MemoryMap))
			for _, region := range dump.MemoryMap {
				fmt.Fprintf(out, "  %016x - %016x %s %s\n", region.Address, region.End(), region.Perms, region.Pathname)
			}

			pages := dump.Pages.Pages()
			fmt.Fprintf(out, "Resident Pages: %d\n", len(pages))
			for _, p := range pages {
				fmt.Fprintf(out, "  %016x flags %x mapping %016x\n", p.Address, p.Page.Flags, p.Page.Mapping)
			}

			if dump.Exe != nil {
				fmt.Fprintf(out, "Executable: %s\n", dump.Exe.Path)
				if dump.Exe.Dentry != nil && dump.Exe.Dentry.Inode != nil {
					inode := dump.Exe.Dentry.Inode
					fmt.Fprintf(out, "  uid %d inode %d flags %x\n", inode.UID, inode.Number, inode.Flags)
				}
			}
			return nil
		},
	}
}

func parsePID(s string) (process.ProcessID, error) {
	pid, err := strconv.ParseInt(s, 10, 32)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid %q", s)
	}
	return process.ProcessID(pid), nil
}
