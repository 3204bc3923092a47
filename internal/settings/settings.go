// Package settings is the in-memory store of the four lighting settings.
package settings

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/suorafx/suorafxctl/internal/core"
	"github.com/suorafx/suorafxctl/internal/protocol"
)

// Record keys, as found in the settings file.
const (
	KeyEffect     = "effect"
	KeySpeed      = "speed"
	KeyBrightness = "brightness"
	KeyColor      = "color"
)

const (
	DefaultEffect     = "wave-right"
	DefaultSpeed      = 3
	DefaultBrightness = 50
	DefaultColor      = "aqua"
)

// Record is the key/value form of Settings used for persistence.
type Record map[string]any

// Settings holds the current effect, speed, brightness and color. Every field
// always holds a valid value; setters reject bad input without mutating.
type Settings struct {
	effect     string
	speed      int
	brightness int
	color      string
}

// Default returns the factory settings.
func Default() Settings {
	return Settings{
		effect:     DefaultEffect,
		speed:      DefaultSpeed,
		brightness: DefaultBrightness,
		color:      DefaultColor,
	}
}

func (s Settings) Effect() string  { return s.effect }
func (s Settings) Speed() int      { return s.speed }
func (s Settings) Brightness() int { return s.brightness }
func (s Settings) Color() string   { return s.color }

func (s Settings) String() string {
	return fmt.Sprintf("effect=%s speed=%d brightness=%d color=%s", s.effect, s.speed, s.brightness, s.color)
}

// SetEffect selects an effect from the catalog.
func (s *Settings) SetEffect(name string) error {
	if !protocol.IsEffect(name) {
		return fmt.Errorf("%w '%s'", core.ErrInvalidEffect, name)
	}
	s.effect = name
	return nil
}

// SetSpeed sets the effect speed, from 0 (fast) to 10 (slow).
func (s *Settings) SetSpeed(n int) error {
	if err := core.CheckSpeed(n); err != nil {
		return err
	}
	s.speed = n
	return nil
}

// SetBrightness sets the brightness, from 0 (off) to 50.
func (s *Settings) SetBrightness(n int) error {
	if err := core.CheckBrightness(n); err != nil {
		return err
	}
	s.brightness = n
	return nil
}

// SetColor selects a color from the catalog.
func (s *Settings) SetColor(name string) error {
	if !protocol.IsColor(name) {
		return fmt.Errorf("%w '%s'", core.ErrInvalidColor, name)
	}
	s.color = name
	return nil
}

// Reset restores every field to its default.
func (s *Settings) Reset() {
	*s = Default()
}

// Apply performs c. All fields of c are validated on a copy first, so a
// failing change leaves s untouched.
func (s *Settings) Apply(c core.Change) error {
	if c.Type == core.ChangeReset {
		s.Reset()
		return nil
	}

	next := *s
	if c.Effect != nil {
		if err := next.SetEffect(*c.Effect); err != nil {
			return err
		}
	}
	if c.Speed != nil {
		if err := next.SetSpeed(*c.Speed); err != nil {
			return err
		}
	}
	if c.Brightness != nil {
		if err := next.SetBrightness(*c.Brightness); err != nil {
			return err
		}
	}
	if c.Color != nil {
		if err := next.SetColor(*c.Color); err != nil {
			return err
		}
	}
	*s = next
	return nil
}

// Record serializes all four fields.
func (s Settings) Record() Record {
	return Record{
		KeyEffect:     s.effect,
		KeySpeed:      s.speed,
		KeyBrightness: s.brightness,
		KeyColor:      s.color,
	}
}

// Load starts from the defaults and overlays every known key of r whose value
// is valid. Unknown keys are ignored. Known keys with a bad value keep the
// default and are reported in skipped.
func Load(r Record) (s Settings, skipped []error) {
	s = Default()

	if v, ok := r[KeyEffect]; ok {
		if err := setString(v, s.SetEffect); err != nil {
			skipped = append(skipped, fmt.Errorf("%s: %w", KeyEffect, err))
		}
	}
	if v, ok := r[KeySpeed]; ok {
		if err := setInt(v, s.SetSpeed); err != nil {
			skipped = append(skipped, fmt.Errorf("%s: %w", KeySpeed, err))
		}
	}
	if v, ok := r[KeyBrightness]; ok {
		if err := setInt(v, s.SetBrightness); err != nil {
			skipped = append(skipped, fmt.Errorf("%s: %w", KeyBrightness, err))
		}
	}
	if v, ok := r[KeyColor]; ok {
		if err := setString(v, s.SetColor); err != nil {
			skipped = append(skipped, fmt.Errorf("%s: %w", KeyColor, err))
		}
	}
	return s, skipped
}

func setString(v any, set func(string) error) error {
	str, ok := v.(string)
	if !ok {
		return fmt.Errorf("expected a string, got %T", v)
	}
	return set(str)
}

func setInt(v any, set func(int) error) error {
	n, err := toInt(v)
	if err != nil {
		return err
	}
	return set(n)
}

// toInt accepts the integer shapes a decoded JSON record can hold.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("expected an integer, got %s", n)
		}
		return int(i), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}
