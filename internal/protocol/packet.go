package protocol

import (
	"fmt"

	"github.com/suorafx/suorafxctl/internal/core"
)

const (
	// PayloadSize is the number of bytes covered by the checksum.
	PayloadSize = 7
	// PacketSize is the payload plus its trailing checksum byte.
	PacketSize = PayloadSize + 1

	headerCommand byte = 0x08
	headerSetMode byte = 0x02
)

// Source is anything that carries the four lighting settings.
type Source interface {
	Effect() string
	Speed() int
	Brightness() int
	Color() string
}

// Packet is a complete command ready to be written to the control endpoint.
type Packet [PacketSize]byte

// Bytes returns a copy of the packet as a slice.
func (p Packet) Bytes() []byte {
	b := make([]byte, PacketSize)
	copy(b, p[:])
	return b
}

// Payload returns the checksummed part of the packet.
func (p Packet) Payload() []byte {
	b := make([]byte, PayloadSize)
	copy(b, p[:PayloadSize])
	return b
}

func (p Packet) String() string {
	return fmt.Sprintf("% x", p[:])
}

// Checksum is 0xFF minus the sum of data, wrapping as unsigned 8-bit arithmetic.
func Checksum(data []byte) byte {
	sum := byte(0xFF)
	for _, b := range data {
		sum -= b
	}
	return sum
}

// Encode builds the packet for s. It fails without producing a packet when any
// field is outside its domain.
func Encode(s Source) (Packet, error) {
	var p Packet

	effect, ok := EffectBytes(s.Effect())
	if !ok {
		return p, fmt.Errorf("encode effect %q: %w", s.Effect(), core.ErrInvalidEffect)
	}
	color, ok := ColorByte(s.Color())
	if !ok {
		return p, fmt.Errorf("encode color %q: %w", s.Color(), core.ErrInvalidColor)
	}
	if err := core.CheckSpeed(s.Speed()); err != nil {
		return p, fmt.Errorf("encode: %w", err)
	}
	if err := core.CheckBrightness(s.Brightness()); err != nil {
		return p, fmt.Errorf("encode: %w", err)
	}

	payload := [PayloadSize]byte{
		headerCommand,
		headerSetMode,
		effect.Mode,
		byte(s.Speed()),
		byte(s.Brightness()),
		color,
		effect.Direction,
	}
	copy(p[:], payload[:])
	p[PayloadSize] = Checksum(payload[:])
	return p, nil
}

// Decoded is the content of a packet read back into names and values.
type Decoded struct {
	Effect     string
	Speed      int
	Brightness int
	Color      string
}

// Decode is the inverse of Encode. It verifies the header, the checksum and
// catalog membership of every field.
func Decode(data []byte) (Decoded, error) {
	var d Decoded
	if len(data) != PacketSize {
		return d, fmt.Errorf("packet has %d bytes, want %d", len(data), PacketSize)
	}
	if data[0] != headerCommand || data[1] != headerSetMode {
		return d, fmt.Errorf("unexpected packet header % x", data[:2])
	}
	if sum := Checksum(data[:PayloadSize]); sum != data[PayloadSize] {
		return d, fmt.Errorf("checksum mismatch: got 0x%02x, want 0x%02x", data[PayloadSize], sum)
	}

	name, ok := effectName(data[2], data[6])
	if !ok {
		return d, fmt.Errorf("mode 0x%02x direction 0x%02x: %w", data[2], data[6], core.ErrInvalidEffect)
	}
	d.Effect = name

	name, ok = colorName(data[5])
	if !ok {
		return d, fmt.Errorf("color code 0x%02x: %w", data[5], core.ErrInvalidColor)
	}
	d.Color = name

	d.Speed = int(data[3])
	d.Brightness = int(data[4])
	if err := core.CheckSpeed(d.Speed); err != nil {
		return d, err
	}
	if err := core.CheckBrightness(d.Brightness); err != nil {
		return d, err
	}
	return d, nil
}
