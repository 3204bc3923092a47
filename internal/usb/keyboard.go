// Package usb talks to the keyboard through libusb: it detaches the kernel HID
// driver from the lighting interface, claims it and writes class requests.
package usb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/gousb"
	"github.com/sirupsen/logrus"

	"github.com/suorafx/suorafxctl/internal/core"
	"github.com/suorafx/suorafxctl/internal/session"
)

const (
	VendorID  gousb.ID = 0x1E7D
	ProductID gousb.ID = 0x3246
	Interface          = 0x03

	// HID SET_REPORT, feature report 0, addressed to the lighting interface.
	requestType uint8  = 0x21
	request     uint8  = 0x09
	value       uint16 = 0x0300
	index       uint16 = 0x03
)

// Keyboard is a session.Device backed by libusb.
type Keyboard struct {
	writeInterval time.Duration
	log           *logrus.Entry
}

// NewKeyboard creates a libusb keyboard. A zero writeInterval selects
// session.DefaultWriteInterval.
func NewKeyboard(writeInterval time.Duration, log *logrus.Entry) *Keyboard {
	if writeInterval <= 0 {
		writeInterval = session.DefaultWriteInterval
	}
	return &Keyboard{
		writeInterval: writeInterval,
		log:           log.WithField("component", "usb"),
	}
}

// Acquire opens the keyboard and claims the lighting interface. libusb
// auto-detach takes the interface from the kernel driver and gives it back
// when the interface is released.
func (k *Keyboard) Acquire(ctx context.Context) (session.Conn, error) {
	usbCtx := gousb.NewContext()

	dev, err := usbCtx.OpenDeviceWithVIDPID(VendorID, ProductID)
	if err != nil {
		usbCtx.Close()
		return nil, fmt.Errorf("open %s:%s: %w", VendorID, ProductID, classify(err))
	}
	if dev == nil {
		usbCtx.Close()
		return nil, fmt.Errorf("no device %s:%s: %w", VendorID, ProductID, core.ErrDeviceNotFound)
	}
	k.log.Debugf("opened %s", dev)

	c := &conn{
		usbCtx: usbCtx,
		dev:    dev,
		log:    k.log,
	}

	if err := dev.SetAutoDetach(true); err != nil {
		c.close()
		return nil, fmt.Errorf("enable kernel driver auto-detach: %w", classify(err))
	}

	cfgNum, err := dev.ActiveConfigNum()
	if err != nil {
		c.close()
		return nil, fmt.Errorf("read active configuration: %w", classify(err))
	}
	c.cfg, err = dev.Config(cfgNum)
	if err != nil {
		c.close()
		return nil, fmt.Errorf("select configuration %d: %w", cfgNum, classifyOr(err, core.ErrDeviceBusy))
	}
	c.intf, err = c.cfg.Interface(Interface, 0)
	if err != nil {
		c.close()
		return nil, fmt.Errorf("claim interface %d: %w", Interface, classifyOr(err, core.ErrDeviceBusy))
	}
	k.log.Debugf("claimed interface %d", Interface)
	c.pacer = session.NewPacer(k.writeInterval)
	return c, nil
}

type conn struct {
	usbCtx  *gousb.Context
	dev     *gousb.Device
	cfg     *gousb.Config
	intf    *gousb.Interface
	pacer   *session.Pacer
	log     *logrus.Entry
}

// Send writes packet with a single control transfer. A short write fails.
func (c *conn) Send(ctx context.Context, packet []byte) error {
	if c.dev == nil {
		return core.ErrNotAcquired
	}
	if err := c.pacer.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", core.ErrTransfer, err)
	}

	n, err := c.dev.Control(requestType, request, value, index, packet)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrTransfer, err)
	}
	if n != len(packet) {
		return fmt.Errorf("%w: wrote %d of %d bytes", core.ErrTransfer, n, len(packet))
	}
	c.log.Debugf("wrote %d bytes", n)
	return nil
}

// Release releases the interface, which reattaches the kernel driver, and
// closes the device. It first lets the last write settle.
func (c *conn) Release() error {
	if c.dev == nil {
		return core.ErrNotAcquired
	}
	if err := c.pacer.Wait(context.Background()); err != nil {
		c.log.Warnf("settle before release: %v", err)
	}
	return c.close()
}

func (c *conn) close() error {
	var errs []error
	if c.intf != nil {
		c.intf.Close()
		c.intf = nil
	}
	if c.cfg != nil {
		if err := c.cfg.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close configuration: %w", err))
		}
		c.cfg = nil
	}
	if c.dev != nil {
		if err := c.dev.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close device: %w", err))
		}
		c.dev = nil
	}
	if c.usbCtx != nil {
		if err := c.usbCtx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close libusb context: %w", err))
		}
		c.usbCtx = nil
	}
	return errors.Join(errs...)
}

// classify maps libusb errors onto the device error kinds.
func classify(err error) error {
	return classifyOr(err, nil)
}

// classifyOr is classify with a kind for errors that carry no libusb code.
// gousb formats configuration and claim errors with %v, dropping the code.
func classifyOr(err error, fallback error) error {
	var uerr gousb.Error
	if !errors.As(err, &uerr) {
		if fallback != nil {
			return fmt.Errorf("%w: %w", fallback, err)
		}
		return err
	}
	switch uerr {
	case gousb.ErrorNotFound, gousb.ErrorNoDevice:
		return fmt.Errorf("%w: %w", core.ErrDeviceNotFound, err)
	case gousb.ErrorAccess:
		return fmt.Errorf("%w: %w", core.ErrAccessDenied, err)
	case gousb.ErrorBusy:
		return fmt.Errorf("%w: %w", core.ErrDeviceBusy, err)
	default:
		return err
	}
}
