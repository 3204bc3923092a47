// Package protocol builds the lighting command packets understood by the
// Suora FX keyboard firmware.
package protocol

import "sort"

// Effect is the (mode, direction) byte pair for a built-in illumination effect.
type Effect struct {
	Mode      byte
	Direction byte
}

var effects = map[string]Effect{
	"full-lit":    {0x01, 0x00},
	"breathing":   {0x02, 0x00},
	"color-shift": {0x08, 0x00},
	"wave-right":  {0x03, 0x01},
	"wave-left":   {0x03, 0x02},
	"wave-up":     {0x03, 0x03},
	"wave-down":   {0x03, 0x04},
	"fade-out":    {0x04, 0x00},
	"fade-in":     {0x07, 0x00},
	"ripple":      {0x06, 0x00},
	"rain":        {0x0A, 0x00},
	"snake":       {0x05, 0x00},
	"spiral":      {0x0B, 0x00},
	"game-over":   {0x09, 0x00},
	"scanner":     {0x0C, 0x00},
	"radar":       {0x0D, 0x00},
}

// effectOrder is the order effects are listed in help output.
var effectOrder = []string{
	"full-lit", "breathing", "color-shift",
	"wave-right", "wave-left", "wave-up", "wave-down",
	"fade-out", "fade-in", "ripple", "rain", "snake",
	"spiral", "game-over", "scanner", "radar",
}

var colors = map[string]byte{
	"red":    0x01,
	"green":  0x02,
	"yellow": 0x03,
	"blue":   0x04,
	"aqua":   0x05,
	"purple": 0x06,
	"white":  0x07,
}

// EffectBytes returns the mode and direction bytes of the named effect.
func EffectBytes(name string) (Effect, bool) {
	e, ok := effects[name]
	return e, ok
}

// ColorByte returns the firmware code of the named color.
func ColorByte(name string) (byte, bool) {
	c, ok := colors[name]
	return c, ok
}

// IsEffect reports whether name is in the effect catalog.
func IsEffect(name string) bool {
	_, ok := effects[name]
	return ok
}

// IsColor reports whether name is in the color catalog.
func IsColor(name string) bool {
	_, ok := colors[name]
	return ok
}

// EffectNames lists the effect catalog in display order.
func EffectNames() []string {
	names := make([]string, len(effectOrder))
	copy(names, effectOrder)
	return names
}

// ColorNames lists the color catalog ordered by firmware code.
func ColorNames() []string {
	names := make([]string, 0, len(colors))
	for name := range colors {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return colors[names[i]] < colors[names[j]] })
	return names
}

func effectName(mode, direction byte) (string, bool) {
	for name, e := range effects {
		if e.Mode == mode && e.Direction == direction {
			return name, true
		}
	}
	return "", false
}

func colorName(code byte) (string, bool) {
	for name, c := range colors {
		if c == code {
			return name, true
		}
	}
	return "", false
}
