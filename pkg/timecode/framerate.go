package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// FrameRate is a validated frame rate: the nominal rational rate, the
// integer rate used for field arithmetic and the drop-frame flag.
// FrameRate values are immutable and safe to share.
type FrameRate struct {
	label     string
	rate      Rational
	fps       int64
	dropFrame bool
	canDrop   bool
	msField   bool
}

// frameRates maps every accepted label to its definition. Drop-frame is on
// by default for the NTSC 29.97 and 59.94 families.
var frameRates = map[string]FrameRate{
	"23.976": {rate: Rate23_976, fps: 24},
	"23.98":  {rate: Rate23_976, fps: 24},
	"24":     {rate: Rate24, fps: 24},
	"25":     {rate: Rate25, fps: 25},
	"29.97":  {rate: Rate29_97, fps: 30, dropFrame: true, canDrop: true},
	"30":     {rate: Rate30, fps: 30},
	"48":     {rate: Rate48, fps: 48},
	"50":     {rate: Rate50, fps: 50},
	"59.94":  {rate: Rate59_94, fps: 60, dropFrame: true, canDrop: true},
	"60":     {rate: Rate60, fps: 60},
	"ms":     {rate: Rate1000, fps: 1000, msField: true},
	"1000":   {rate: Rate1000, fps: 1000, msField: true},
	"frames": {rate: Rate1, fps: 1},
}

// ParseFrameRate resolves a frame rate label. Besides the enumerated labels
// it accepts "N/D" rationals that round (to two decimals) onto one of them,
// e.g. "30000/1001" resolves to "29.97".
func ParseFrameRate(label string) (FrameRate, error) {
	key := strings.TrimSpace(label)
	if num, den, ok := strings.Cut(key, "/"); ok {
		resolved, err := rationalLabel(num, den)
		if err != nil {
			return FrameRate{}, fmt.Errorf("%w: %q: %v", ErrInvalidFrameRate, label, err)
		}
		key = resolved
	}

	fr, ok := frameRates[key]
	if !ok {
		return FrameRate{}, fmt.Errorf("%w: %q", ErrInvalidFrameRate, label)
	}
	fr.label = key
	return fr, nil
}

// MustParseFrameRate is like ParseFrameRate but panics on error. Intended
// for package-level variables and tests.
func MustParseFrameRate(label string) FrameRate {
	fr, err := ParseFrameRate(label)
	if err != nil {
		panic(err)
	}
	return fr
}

func rationalLabel(num, den string) (string, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return "", fmt.Errorf("bad numerator: %w", err)
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil {
		return "", fmt.Errorf("bad denominator: %w", err)
	}
	if d == 0 {
		return "", fmt.Errorf("zero denominator")
	}
	v := math.Round(n/d*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64), nil
}

// Labels returns every accepted frame rate label in sorted order.
func Labels() []string {
	labels := make([]string, 0, len(frameRates))
	for l := range frameRates {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	return labels
}

// Label returns the label the rate was parsed from.
func (f FrameRate) Label() string { return f.label }

// Rate returns the nominal frames per second.
func (f FrameRate) Rate() Rational { return f.rate }

// RoundedFPS returns the integer frames per second used for field
// arithmetic (29.97 -> 30).
func (f FrameRate) RoundedFPS() int64 { return f.fps }

// IsDropFrame reports whether drop-frame counting is in effect.
func (f FrameRate) IsDropFrame() bool { return f.dropFrame }

// IsZero reports whether f is the zero FrameRate, which no codec operation accepts.
func (f FrameRate) IsZero() bool { return f.fps == 0 }

// DroppedPerMinute is the number of frame numbers skipped at the start of
// each minute not divisible by ten; 0 for non-drop counting.
func (f FrameRate) DroppedPerMinute() int64 {
	if !f.dropFrame {
		return 0
	}
	return f.fps / 15
}

// NonDrop returns a copy of f that counts without dropping frame numbers.
func (f FrameRate) NonDrop() FrameRate {
	f.dropFrame = false
	return f
}

// WithDropFrame returns a copy of f with the drop-frame flag set as
// requested. Only the 29.97 and 59.94 families can drop.
func (f FrameRate) WithDropFrame(drop bool) (FrameRate, error) {
	if drop && !f.canDrop {
		return FrameRate{}, fmt.Errorf("%w: %q cannot use drop-frame counting", ErrInvalidFrameRate, f.label)
	}
	f.dropFrame = drop
	return f, nil
}

// Equal reports structural equality on nominal rate and drop-frame flag.
// Aliases such as "23.976" and "23.98" are equal.
func (f FrameRate) Equal(o FrameRate) bool {
	return f.rate.Equal(o.rate) && f.dropFrame == o.dropFrame
}

// separator is the canonical character placed before the frame field.
func (f FrameRate) separator() byte {
	switch {
	case f.dropFrame:
		return ';'
	case f.msField:
		return '.'
	}
	return ':'
}

// fieldWidth is the number of digits in the frame field.
func (f FrameRate) fieldWidth() int {
	if f.msField {
		return 3
	}
	return 2
}

func (f FrameRate) String() string { return f.label }

// MarshalText implements encoding.TextMarshaler.
func (f FrameRate) MarshalText() ([]byte, error) {
	return []byte(f.label), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FrameRate) UnmarshalText(text []byte) error {
	fr, err := ParseFrameRate(string(text))
	if err != nil {
		return err
	}
	*f = fr
	return nil
}
