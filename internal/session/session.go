// Package session drives one keyboard configuration run: acquire the device,
// send the lighting packet and release the device again.
package session

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/suorafx/suorafxctl/internal/core"
	"github.com/suorafx/suorafxctl/internal/protocol"
)

// Device opens exclusive access to the keyboard's lighting interface.
type Device interface {
	Acquire(ctx context.Context) (Conn, error)
}

// Conn is a claimed lighting interface. Release must restore whatever driver
// state Acquire changed.
type Conn interface {
	Send(ctx context.Context, packet []byte) error
	Release() error
}

// State of a Session.
type State int

const (
	Idle State = iota
	Acquired
	Committed
	Released
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Acquired:
		return "acquired"
	case Committed:
		return "committed"
	case Released:
		return "released"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is a single acquire, commit, release cycle against a Device.
// It is not safe for concurrent use.
type Session struct {
	device Device
	conn   Conn
	state  State
	log    *logrus.Entry
}

// New returns an idle session for device.
func New(device Device, log *logrus.Entry) *Session {
	return &Session{
		device: device,
		state:  Idle,
		log:    log.WithField("component", "session"),
	}
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Acquire claims the device. It can only be called once.
func (s *Session) Acquire(ctx context.Context) error {
	if s.state != Idle {
		return fmt.Errorf("acquire in state %s: %w", s.state, core.ErrAlreadyAcquired)
	}

	conn, err := s.device.Acquire(ctx)
	if err != nil {
		return err
	}
	s.conn = conn
	s.state = Acquired
	s.log.Debug("keyboard acquired")
	return nil
}

// Commit encodes src and writes the packet in a single control transfer.
// The packet is read back before sending, so an encoding that does not
// round trip never reaches the keyboard. The state only moves to Committed
// once the whole packet was sent.
func (s *Session) Commit(ctx context.Context, src protocol.Source) (protocol.Packet, error) {
	if s.state != Acquired && s.state != Committed {
		return protocol.Packet{}, fmt.Errorf("commit in state %s: %w", s.state, core.ErrNotAcquired)
	}

	packet, err := protocol.Encode(src)
	if err != nil {
		return protocol.Packet{}, err
	}

	decoded, err := protocol.Decode(packet.Bytes())
	if err != nil {
		return protocol.Packet{}, fmt.Errorf("packet %s does not read back: %w", packet, err)
	}
	s.log.WithFields(logrus.Fields{
		"effect":     decoded.Effect,
		"speed":      decoded.Speed,
		"brightness": decoded.Brightness,
		"color":      decoded.Color,
	}).Debugf("sending packet %s", packet)
	if err := s.conn.Send(ctx, packet.Bytes()); err != nil {
		return protocol.Packet{}, err
	}
	s.state = Committed
	return packet, nil
}

// Release gives the interface back to the kernel driver.
func (s *Session) Release() error {
	if s.state != Acquired && s.state != Committed {
		return fmt.Errorf("release in state %s: %w", s.state, core.ErrNotAcquired)
	}

	err := s.conn.Release()
	s.conn = nil
	s.state = Released
	if err != nil {
		return err
	}
	s.log.Debug("keyboard released")
	return nil
}
