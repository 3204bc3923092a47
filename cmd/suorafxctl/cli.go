package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/suorafx/suorafxctl/internal/core"
	"github.com/suorafx/suorafxctl/internal/protocol"
	"github.com/suorafx/suorafxctl/internal/session"
)

const epilog = "The first call to this command will reset all unspecified settings to their default value"

type options struct {
	change        core.Change
	configPath    string
	backend       string
	writeInterval time.Duration
	verbose       bool
	dryRun        bool
	show          bool
	version       bool
	help          bool
}

// usageError marks errors caused by bad command-line input.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func newFlagSet(opts *options, effect *string, speed, brightness *int, color *string, reset *bool, output io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("suorafxctl", pflag.ContinueOnError)
	fs.SetOutput(output)
	fs.SortFlags = false

	fs.StringVarP(effect, "effect", "e", "", fmt.Sprintf("illumination effect (%s)", strings.Join(protocol.EffectNames(), ", ")))
	fs.IntVarP(speed, "speed", "s", 0, fmt.Sprintf("illumination effect speed, from %d (fast) to %d (slow)", core.MinSpeed, core.MaxSpeed))
	fs.IntVarP(brightness, "brightness", "b", 0, fmt.Sprintf("keyboard brightness, from %d (light off) to %d", core.MinBrightness, core.MaxBrightness))
	fs.StringVarP(color, "color", "c", "", fmt.Sprintf("illumination color (%s)", strings.Join(protocol.ColorNames(), ", ")))
	fs.BoolVarP(reset, "reset", "r", false, "reset all settings to their default")

	fs.StringVar(&opts.configPath, "config", "", "settings file (default $XDG_CONFIG_HOME/suorafxctl.json)")
	fs.StringVar(&opts.backend, "backend", "usb", fmt.Sprintf("device backend (%s)", strings.Join(backendNames(), ", ")))
	fs.DurationVar(&opts.writeInterval, "write-interval", session.DefaultWriteInterval, "settle time after claiming the keyboard and after writing to it")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "print the packet instead of sending it; nothing is saved")
	fs.BoolVar(&opts.show, "show", false, "print the saved settings and exit")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log every step to stderr")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")
	fs.BoolVarP(&opts.help, "help", "h", false, "show this help message and exit")

	fs.Usage = func() {
		fmt.Fprintln(output, "usage: suorafxctl [flags]")
		fmt.Fprintln(output)
		fmt.Fprint(output, fs.FlagUsages())
		fmt.Fprintln(output)
		fmt.Fprintln(output, epilog)
	}
	return fs
}

// parseArgs turns args into options. Setting values are validated here so a
// bad flag never reaches the device.
func parseArgs(args []string, output io.Writer) (options, error) {
	var (
		opts       options
		effect     string
		speed      int
		brightness int
		color      string
		reset      bool
	)

	fs := newFlagSet(&opts, &effect, &speed, &brightness, &color, &reset, output)
	if err := fs.Parse(args); err != nil {
		return opts, usageError{err}
	}
	if opts.help {
		fs.Usage()
		return opts, nil
	}
	if fs.NArg() > 0 {
		return opts, usageError{fmt.Errorf("unexpected argument %q", fs.Arg(0))}
	}
	if opts.writeInterval <= 0 {
		return opts, usageError{fmt.Errorf("write interval must be positive, got %s", opts.writeInterval)}
	}
	if _, ok := backends[opts.backend]; !ok {
		return opts, usageError{fmt.Errorf("unknown backend %q, choose from %s", opts.backend, strings.Join(backendNames(), ", "))}
	}

	opts.change.Type = core.ChangeUpdate
	if reset {
		opts.change.Type = core.ChangeReset
	}
	if fs.Changed("effect") {
		if !protocol.IsEffect(effect) {
			return opts, usageError{fmt.Errorf("invalid effect %q, choose from %s: %w", effect, strings.Join(protocol.EffectNames(), ", "), core.ErrInvalidEffect)}
		}
		opts.change.Effect = &effect
	}
	if fs.Changed("speed") {
		if err := core.CheckSpeed(speed); err != nil {
			return opts, usageError{err}
		}
		opts.change.Speed = &speed
	}
	if fs.Changed("brightness") {
		if err := core.CheckBrightness(brightness); err != nil {
			return opts, usageError{err}
		}
		opts.change.Brightness = &brightness
	}
	if fs.Changed("color") {
		if !protocol.IsColor(color) {
			return opts, usageError{fmt.Errorf("invalid color %q, choose from %s: %w", color, strings.Join(protocol.ColorNames(), ", "), core.ErrInvalidColor)}
		}
		opts.change.Color = &color
	}
	return opts, nil
}
