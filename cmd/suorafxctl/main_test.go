package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/suorafx/suorafxctl/internal/core"
	"github.com/suorafx/suorafxctl/internal/session"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		wantType       core.ChangeType
		wantEffect     string
		wantSpeed      int
		wantBrightness int
		wantColor      string
		wantSet        []string
		wantErr        error
		wantUsage      bool
	}{
		{
			name:     "no flags",
			args:     nil,
			wantType: core.ChangeUpdate,
		},
		{
			name:       "short flags",
			args:       []string{"-e", "ripple", "-c", "red"},
			wantType:   core.ChangeUpdate,
			wantEffect: "ripple",
			wantColor:  "red",
			wantSet:    []string{"effect", "color"},
		},
		{
			name:           "long flags at boundaries",
			args:           []string{"--speed", "0", "--brightness=50"},
			wantType:       core.ChangeUpdate,
			wantSpeed:      0,
			wantBrightness: 50,
			wantSet:        []string{"speed", "brightness"},
		},
		{
			name:       "reset",
			args:       []string{"-r", "-e", "snake"},
			wantType:   core.ChangeReset,
			wantEffect: "snake",
			wantSet:    []string{"effect"},
		},
		{
			name:      "unknown effect",
			args:      []string{"--effect", "disco"},
			wantErr:   core.ErrInvalidEffect,
			wantUsage: true,
		},
		{
			name:      "unknown color",
			args:      []string{"-c", "pink"},
			wantErr:   core.ErrInvalidColor,
			wantUsage: true,
		},
		{
			name:      "speed too high",
			args:      []string{"-s", "11"},
			wantErr:   core.ErrOutOfRange,
			wantUsage: true,
		},
		{
			name:      "brightness negative",
			args:      []string{"-b", "-1"},
			wantErr:   core.ErrOutOfRange,
			wantUsage: true,
		},
		{
			name:      "speed not a number",
			args:      []string{"-s", "fast"},
			wantUsage: true,
		},
		{
			name:      "positional argument",
			args:      []string{"ripple"},
			wantUsage: true,
		},
		{
			name:      "unknown backend",
			args:      []string{"--backend", "serial"},
			wantUsage: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseArgs(tt.args, io.Discard)
			if tt.wantUsage {
				var uerr usageError
				if !errors.As(err, &uerr) {
					t.Fatalf("parseArgs() error = %v, want usage error", err)
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("parseArgs() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseArgs() error = %v", err)
			}

			c := opts.change
			if c.Type != tt.wantType {
				t.Errorf("change type = %s, want %s", c.Type, tt.wantType)
			}
			set := map[string]bool{}
			for _, name := range tt.wantSet {
				set[name] = true
			}
			checkStr(t, "effect", c.Effect, set["effect"], tt.wantEffect)
			checkStr(t, "color", c.Color, set["color"], tt.wantColor)
			checkInt(t, "speed", c.Speed, set["speed"], tt.wantSpeed)
			checkInt(t, "brightness", c.Brightness, set["brightness"], tt.wantBrightness)
		})
	}
}

func checkStr(t *testing.T, name string, got *string, set bool, want string) {
	t.Helper()
	switch {
	case !set && got != nil:
		t.Errorf("%s = %q, want unset", name, *got)
	case set && (got == nil || *got != want):
		t.Errorf("%s = %v, want %q", name, got, want)
	}
}

func checkInt(t *testing.T, name string, got *int, set bool, want int) {
	t.Helper()
	switch {
	case !set && got != nil:
		t.Errorf("%s = %d, want unset", name, *got)
	case set && (got == nil || *got != want):
		t.Errorf("%s = %v, want %d", name, got, want)
	}
}

func TestParseWriteInterval(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    time.Duration
		wantErr bool
	}{
		{"default", nil, session.DefaultWriteInterval, false},
		{"custom", []string{"--write-interval", "120ms"}, 120 * time.Millisecond, false},
		{"negative", []string{"--write-interval=-1s"}, 0, true},
		{"not a duration", []string{"--write-interval", "soon"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseArgs(tt.args, io.Discard)
			if tt.wantErr {
				var uerr usageError
				if !errors.As(err, &uerr) {
					t.Errorf("parseArgs() error = %v, want usage error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseArgs() error = %v", err)
			}
			if opts.writeInterval != tt.want {
				t.Errorf("writeInterval = %s, want %s", opts.writeInterval, tt.want)
			}
		})
	}
}

func TestRunDryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suorafxctl.json")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"--config", path, "--dry-run", "-e", "ripple", "-c", "red"}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("run() = %d, stderr: %s", code, stderr.String())
	}
	if got, want := strings.TrimSpace(stdout.String()), "08 02 06 03 32 01 00 b9"; got != want {
		t.Errorf("dry run printed %q, want %q", got, want)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("dry run wrote %s", path)
	}
}

func TestRunDryRunMergesSavedSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suorafxctl.json")
	if err := os.WriteFile(path, []byte(`{"effect": "rain", "speed": 10, "brightness": 20, "color": "blue"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"--config", path, "--dry-run", "--brightness", "0"}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("run() = %d, stderr: %s", code, stderr.String())
	}
	// 0xFF - (0x08 + 0x02 + 0x0A + 10 + 0 + 0x04 + 0x00) = 0xDD
	if got, want := strings.TrimSpace(stdout.String()), "08 02 0a 0a 00 04 00 dd"; got != want {
		t.Errorf("dry run printed %q, want %q", got, want)
	}
}

func TestRunShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suorafxctl.json")
	if err := os.WriteFile(path, []byte(`{"effect": "spiral", "color": "white"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer

	if code := run(context.Background(), []string{"--config", path, "--show"}, &stdout, &stderr); code != exitOK {
		t.Fatalf("run() = %d, stderr: %s", code, stderr.String())
	}
	if got, want := strings.TrimSpace(stdout.String()), "effect=spiral speed=3 brightness=50 color=white"; got != want {
		t.Errorf("show printed %q, want %q", got, want)
	}
}

func TestRunExitCodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suorafxctl.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"help", []string{"--help"}, exitOK},
		{"version", []string{"--version"}, exitOK},
		{"bad flag", []string{"--speed", "12"}, exitUsage},
		{"zero write interval", []string{"--write-interval", "0s"}, exitUsage},
		{"broken settings file", []string{"--config", path, "--show"}, exitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if got := run(context.Background(), tt.args, &stdout, &stderr); got != tt.want {
				t.Errorf("run(%v) = %d, want %d (stderr: %s)", tt.args, got, tt.want, stderr.String())
			}
		})
	}
}

func TestHelpListsCatalogs(t *testing.T) {
	var stderr bytes.Buffer
	if _, err := parseArgs([]string{"-h"}, &stderr); err != nil {
		t.Fatal(err)
	}
	help := stderr.String()
	for _, want := range []string{"game-over", "wave-down", "purple", "--reset", epilog} {
		if !strings.Contains(help, want) {
			t.Errorf("help output is missing %q", want)
		}
	}
}
