package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/suorafx/suorafxctl/internal/config"
	"github.com/suorafx/suorafxctl/internal/hid"
	"github.com/suorafx/suorafxctl/internal/protocol"
	"github.com/suorafx/suorafxctl/internal/session"
	"github.com/suorafx/suorafxctl/internal/usb"
)

// These variables will be set by the build script
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var backends = map[string]func(writeInterval time.Duration, log *logrus.Entry) session.Device{
	"usb": func(d time.Duration, log *logrus.Entry) session.Device { return usb.NewKeyboard(d, log) },
	"hid": func(d time.Duration, log *logrus.Entry) session.Device { return hid.NewKeyboard(d, log) },
}

func backendNames() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "suorafxctl: %v\n", err)
		var uerr usageError
		if errors.As(err, &uerr) {
			return exitUsage
		}
		return exitError
	}
	if opts.help {
		return exitOK
	}
	if opts.version {
		fmt.Fprintf(stdout, "suorafxctl %s (commit %s, built %s)\n", version, commit, date)
		return exitOK
	}

	log := newLogger(stderr, opts.verbose)
	if err := execute(ctx, opts, stdout, log); err != nil {
		fmt.Fprintf(stderr, "suorafxctl: %v\n", err)
		return exitError
	}
	return exitOK
}

func newLogger(out io.Writer, verbose bool) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logrus.NewEntry(logger)
}

func execute(ctx context.Context, opts options, stdout io.Writer, log *logrus.Entry) error {
	store := config.NewStore(opts.configPath, log)
	current, err := store.Load()
	if err != nil {
		return err
	}

	if opts.show {
		fmt.Fprintf(stdout, "%s\n", current)
		return nil
	}

	if opts.dryRun {
		next := current
		if err := next.Apply(opts.change); err != nil {
			return err
		}
		packet, err := protocol.Encode(next)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\n", packet)
		return nil
	}

	dev := backends[opts.backend](opts.writeInterval, log)
	res, err := session.Apply(ctx, dev, store, current, opts.change, log)
	if err != nil {
		return err
	}
	log.Infof("applied %s", res.Settings)
	return nil
}
