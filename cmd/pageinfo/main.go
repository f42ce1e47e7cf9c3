package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"pageinfo/config"
	"pageinfo/control"
	"pageinfo/session"
)

const readSize = 1024

func usage(w io.Writer, name string) {
	fmt.Fprintf(w, "Usage: %s [-pd] [--socket path] <PID>\n", name)
}

func run(name string, args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)

	page := flags.BoolP("page", "p", false, "print the first resident page of the first memory region")
	dentry := flags.BoolP("dentry", "d", false, "print the dentry of the executable")
	socket := flags.String("socket", socketPath(), "control socket path")

	if err := flags.Parse(args); err != nil || flags.NArg() != 1 {
		usage(stderr, name)
		return 1
	}

	pid, err := strconv.ParseInt(flags.Arg(0), 10, 32)
	if err != nil || pid <= 0 {
		fmt.Fprintln(stderr, "PID must be a positive int number!")
		return 1
	}

	var request session.Flags
	if *page {
		request |= session.FlagPage
	}
	if *dentry {
		request |= session.FlagDentry
	}

	fmt.Fprintf(stdout, "Opening %q...\n", *socket)
	c, err := control.Dial(*socket)
	if err != nil {
		if errors.Is(err, session.ErrBusy) {
			fmt.Fprintln(stderr, "Couldn't open the file! Another query is in progress.")
		} else {
			fmt.Fprintln(stderr, "Couldn't open the file!")
		}
		return 1
	}
	defer c.Close()

	fmt.Fprintf(stdout, "Sending PID=%d to pageinfod...\n", pid)
	status := 0
	if _, err := c.Write(control.EncodeRequest(int32(pid), request)); err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidArgument):
			fmt.Fprintln(stderr, "Invalid argument! Does process with such PID exist?")
			return 1
		case errors.Is(err, session.ErrFault):
			fmt.Fprintln(stderr, "Internal error occurred!")
			status = 1
		default:
			fmt.Fprintln(stderr, "Couldn't write to the control socket!")
			return 1
		}
	}

	// a faulted request still renders the sections it got to
	buf := make([]byte, readSize)
	for {
		n, err := c.Read(buf)
		if _, werr := stdout.Write(buf[:n]); werr != nil {
			fmt.Fprintln(stderr, "Couldn't write the result!")
			return 1
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintln(stderr, "Couldn't read from the control socket!")
			return 1
		}
	}
	return status
}

func socketPath() string {
	if v := os.Getenv(config.EnvSocket); v != "" {
		return v
	}
	return config.DefaultSocket
}

func main() {
	os.Exit(run(os.Args[0], os.Args[1:], os.Stdout, os.Stderr))
}
