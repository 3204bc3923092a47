// Package hid talks to the keyboard through hidapi. The lighting packet is sent
// as feature report 0 on the lighting interface, which the kernel turns into
// the same SET_REPORT control transfer without unbinding its driver.
package hid

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sstallion/go-hid"

	"github.com/suorafx/suorafxctl/internal/core"
	"github.com/suorafx/suorafxctl/internal/session"
)

const (
	VendorID  uint16 = 0x1E7D
	ProductID uint16 = 0x3246
	Interface        = 0x03

	reportID byte = 0x00
)

// Keyboard is a session.Device backed by hidapi.
type Keyboard struct {
	writeInterval time.Duration
	log           *logrus.Entry
}

// NewKeyboard creates a hidapi keyboard. A zero writeInterval selects
// session.DefaultWriteInterval.
func NewKeyboard(writeInterval time.Duration, log *logrus.Entry) *Keyboard {
	if writeInterval <= 0 {
		writeInterval = session.DefaultWriteInterval
	}
	return &Keyboard{
		writeInterval: writeInterval,
		log:           log.WithField("component", "hid"),
	}
}

// Acquire opens the hidraw node of the lighting interface.
func (k *Keyboard) Acquire(ctx context.Context) (session.Conn, error) {
	if err := hid.Init(); err != nil {
		return nil, fmt.Errorf("init hidapi: %w", err)
	}

	path, err := findInterface(k.log)
	if err != nil {
		hid.Exit()
		return nil, err
	}

	dev, err := hid.OpenPath(path)
	if err != nil {
		_, ferr := findInterface(k.log)
		hid.Exit()
		return nil, openError(path, err, ferr == nil)
	}
	k.log.Debugf("opened %s", path)

	return &conn{
		dev:   dev,
		pacer: session.NewPacer(k.writeInterval),
		log:   k.log,
	}, nil
}

// openError classifies a failed open. hidapi only reports that the open
// failed, so present tells whether the interface still enumerates.
func openError(path string, err error, present bool) error {
	if !present || errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("open %s: %w: %w", path, core.ErrDeviceNotFound, err)
	}
	return fmt.Errorf("open %s: %w: %w", path, core.ErrAccessDenied, err)
}

func findInterface(log *logrus.Entry) (string, error) {
	var path string
	err := hid.Enumerate(VendorID, ProductID, func(info *hid.DeviceInfo) error {
		log.Debugf("found %s interface %d", info.Path, info.InterfaceNbr)
		if path == "" && info.InterfaceNbr == Interface {
			path = info.Path
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("enumerate %04x:%04x: %w", VendorID, ProductID, err)
	}
	if path == "" {
		return "", fmt.Errorf("no device %04x:%04x interface %d: %w", VendorID, ProductID, Interface, core.ErrDeviceNotFound)
	}
	return path, nil
}

type conn struct {
	dev     *hid.Device
	pacer   *session.Pacer
	log     *logrus.Entry
}

// Send writes packet as one feature report. A short write fails.
func (c *conn) Send(ctx context.Context, packet []byte) error {
	if c.dev == nil {
		return core.ErrNotAcquired
	}
	if err := c.pacer.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", core.ErrTransfer, err)
	}

	report := make([]byte, 0, len(packet)+1)
	report = append(report, reportID)
	report = append(report, packet...)

	n, err := c.dev.SendFeatureReport(report)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrTransfer, err)
	}
	if n != len(report) {
		return fmt.Errorf("%w: wrote %d of %d bytes", core.ErrTransfer, n, len(report))
	}
	c.log.Debugf("wrote feature report of %d bytes", n)
	return nil
}

// Release lets the last write settle, then closes the hidraw node and shuts
// hidapi down.
func (c *conn) Release() error {
	if c.dev == nil {
		return core.ErrNotAcquired
	}
	if err := c.pacer.Wait(context.Background()); err != nil {
		c.log.Warnf("settle before release: %v", err)
	}
	err := c.dev.Close()
	c.dev = nil
	if exitErr := hid.Exit(); err == nil {
		err = exitErr
	}
	if err != nil {
		return fmt.Errorf("close hid device: %w", err)
	}
	return nil
}
