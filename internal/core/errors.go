// Package core holds the error kinds, limits and request types shared by the
// settings store, the protocol encoder and the device session.
package core

import (
	"errors"
	"fmt"
)

// Setting errors are returned before any device I/O takes place.
var (
	ErrInvalidEffect = errors.New("unsupported effect")
	ErrInvalidColor  = errors.New("unsupported color")
	ErrOutOfRange    = errors.New("value out of range")
)

// Device errors.
var (
	ErrDeviceNotFound  = errors.New("keyboard not found")
	ErrAccessDenied    = errors.New("access to keyboard denied")
	ErrDeviceBusy      = errors.New("keyboard interface busy")
	ErrTransfer        = errors.New("control transfer failed")
	ErrNotAcquired     = errors.New("keyboard not acquired")
	ErrAlreadyAcquired = errors.New("keyboard already acquired")
)

// Persistence errors.
var (
	ErrConfigRead  = errors.New("cannot read settings file")
	ErrConfigWrite = errors.New("cannot write settings file")
)

const (
	MinSpeed      = 0
	MaxSpeed      = 10
	MinBrightness = 0
	MaxBrightness = 50
)

// CheckSpeed validates an effect speed, 0 being the fastest.
func CheckSpeed(n int) error {
	if n < MinSpeed || n > MaxSpeed {
		return fmt.Errorf("speed must be an integer between %d and %d, got %d: %w", MinSpeed, MaxSpeed, n, ErrOutOfRange)
	}
	return nil
}

// CheckBrightness validates a brightness level, 0 being off.
func CheckBrightness(n int) error {
	if n < MinBrightness || n > MaxBrightness {
		return fmt.Errorf("brightness must be an integer between %d and %d, got %d: %w", MinBrightness, MaxBrightness, n, ErrOutOfRange)
	}
	return nil
}
