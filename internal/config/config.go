// Package config locates, loads and saves the persisted lighting settings.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"

	"github.com/suorafx/suorafxctl/internal/core"
	"github.com/suorafx/suorafxctl/internal/settings"
)

// FileName is the settings file name inside the user configuration directory.
const FileName = "suorafxctl.json"

// DefaultPath returns $XDG_CONFIG_HOME/suorafxctl.json, or ~/.config/suorafxctl.json
// when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, FileName)
}

// Store reads and writes the settings record at a fixed path.
type Store struct {
	path string
	log  *logrus.Entry
}

// NewStore creates a store for path. An empty path selects DefaultPath.
func NewStore(path string, log *logrus.Entry) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path, log: log.WithField("component", "config")}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted settings merged over the defaults. A missing
// file yields the defaults. Invalid values for known keys are logged and
// skipped.
func (s *Store) Load() (settings.Settings, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Debugf("no settings file at '%s', using defaults", s.path)
			return settings.Default(), nil
		}
		return settings.Settings{}, fmt.Errorf("%w '%s': %w", core.ErrConfigRead, s.path, err)
	}
	defer file.Close()

	record, err := decode(file)
	if err != nil {
		return settings.Settings{}, fmt.Errorf("%w '%s': %w", core.ErrConfigRead, s.path, err)
	}

	loaded, skipped := settings.Load(record)
	for _, err := range skipped {
		s.log.Warnf("ignoring setting from '%s': %v", s.path, err)
	}
	s.log.Debugf("loaded settings from '%s': %s", s.path, loaded)
	return loaded, nil
}

// Save overwrites the file with every field of st, creating the directory
// first when needed. The file is replaced atomically.
func (s *Store) Save(st settings.Settings) error {
	data, err := json.Marshal(st.Record())
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrConfigWrite, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create '%s': %w", core.ErrConfigWrite, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+FileName+".*")
	if err != nil {
		return fmt.Errorf("%w '%s': %w", core.ErrConfigWrite, s.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w '%s': %w", core.ErrConfigWrite, s.path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("%w '%s': %w", core.ErrConfigWrite, s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w '%s': %w", core.ErrConfigWrite, s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w '%s': %w", core.ErrConfigWrite, s.path, err)
	}

	s.log.Debugf("saved settings to '%s': %s", s.path, st)
	return nil
}

func decode(r io.Reader) (settings.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return settings.Record{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var record settings.Record
	if err := dec.Decode(&record); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}
	if err := dec.Decode(new(json.RawMessage)); err != io.EOF {
		if err == nil {
			return nil, errors.New("failed to decode json: more than one value")
		}
		return nil, fmt.Errorf("failed to decode json: trailing data: %w", err)
	}
	if record == nil {
		record = settings.Record{}
	}
	return record, nil
}
