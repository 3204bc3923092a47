package session

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/suorafx/suorafxctl/internal/core"
	"github.com/suorafx/suorafxctl/internal/protocol"
	"github.com/suorafx/suorafxctl/internal/settings"
)

// Store persists the settings that were sent to the keyboard.
type Store interface {
	Save(settings.Settings) error
}

// Result describes a completed run.
type Result struct {
	Settings settings.Settings
	Packet   protocol.Packet
}

// Apply performs change on top of current and configures the keyboard:
// acquire, commit, save, release. The change is validated before the device
// is touched. Settings are only saved once the packet was sent, and the device
// is released on every path after a successful acquire.
func Apply(ctx context.Context, dev Device, store Store, current settings.Settings, change core.Change, log *logrus.Entry) (res Result, err error) {
	next := current
	if err := next.Apply(change); err != nil {
		return Result{}, err
	}
	if change.IsEmpty() {
		log.Debugf("nothing changed, sending saved settings again: %s", next)
	}

	s := New(dev, log)
	if err := s.Acquire(ctx); err != nil {
		return Result{}, err
	}
	defer func() {
		if rerr := s.Release(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()

	packet, err := s.Commit(ctx, next)
	if err != nil {
		return Result{}, err
	}
	if err := store.Save(next); err != nil {
		return Result{Settings: next, Packet: packet}, err
	}
	return Result{Settings: next, Packet: packet}, nil
}
