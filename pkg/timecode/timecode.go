package timecode

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"time"
)

// Variant selects whether a Timecode accepts negative frame numbers.
type Variant uint8

const (
	// Signed timecodes accept any frame number.
	Signed Variant = iota
	// NonNegative timecodes reject negative frame numbers at construction.
	NonNegative
)

func (v Variant) String() string {
	if v == NonNegative {
		return "non-negative"
	}
	return "signed"
}

// Timecode is an immutable frame-accurate instant: a frame rate and a signed
// frame number. The string form is always derived from the pair.
type Timecode struct {
	rate        FrameRate
	frameNumber int64
	variant     Variant
}

// New builds a Signed timecode from a frame rate label and either a timecode
// string or an integer frame number.
func New[T string | int | int64](label string, init T) (Timecode, error) {
	fr, err := ParseFrameRate(label)
	if err != nil {
		return Timecode{}, err
	}
	switch v := any(init).(type) {
	case string:
		return FromString(fr, v)
	case int:
		return FromFrameNumber(fr, int64(v)), nil
	case int64:
		return FromFrameNumber(fr, v), nil
	}
	panic("unreachable")
}

// FromString decodes s at rate fr.
func FromString(fr FrameRate, s string) (Timecode, error) {
	n, err := Decode(fr, s)
	if err != nil {
		return Timecode{}, err
	}
	return Timecode{rate: fr, frameNumber: n}, nil
}

// FromFrameNumber stores n as is.
func FromFrameNumber(fr FrameRate, n int64) Timecode {
	return Timecode{rate: fr, frameNumber: n}
}

// FromSeconds converts seconds to a frame number by truncating
// seconds * RoundedFPS.
func FromSeconds(fr FrameRate, seconds float64) Timecode {
	return Timecode{rate: fr, frameNumber: int64(seconds * float64(fr.RoundedFPS()))}
}

// FromBCD decodes a packed 0xHHMMSSFF value at rate fr.
func FromBCD(fr FrameRate, v int64) (Timecode, error) {
	n, err := DecodeBCD(fr, v)
	if err != nil {
		return Timecode{}, err
	}
	return Timecode{rate: fr, frameNumber: n}, nil
}

// NonNegativeFromString decodes s into a NonNegative timecode.
func NonNegativeFromString(fr FrameRate, s string) (Timecode, error) {
	tc, err := FromString(fr, s)
	if err != nil {
		return Timecode{}, err
	}
	return tc.AsVariant(NonNegative)
}

// NonNegativeFromFrameNumber builds a NonNegative timecode, rejecting n < 0.
func NonNegativeFromFrameNumber(fr FrameRate, n int64) (Timecode, error) {
	return FromFrameNumber(fr, n).AsVariant(NonNegative)
}

// AsVariant returns a copy of t tagged with v. Converting a negative
// timecode to NonNegative fails with ErrNegativeFrameNumber.
func (t Timecode) AsVariant(v Variant) (Timecode, error) {
	if v == NonNegative && t.frameNumber < 0 {
		return Timecode{}, fmt.Errorf("%w: %d", ErrNegativeFrameNumber, t.frameNumber)
	}
	t.variant = v
	return t, nil
}

// FrameRate returns the rate t is counted against.
func (t Timecode) FrameRate() FrameRate { return t.rate }

// FrameNumber returns the canonical signed frame number.
func (t Timecode) FrameNumber() int64 { return t.frameNumber }

// Frames returns the magnitude of the frame number.
func (t Timecode) Frames() uint64 {
	if t.frameNumber < 0 {
		return uint64(-t.frameNumber)
	}
	return uint64(t.frameNumber)
}

// IsDropFrame reports whether t renders with drop-frame counting.
func (t Timecode) IsDropFrame() bool { return t.rate.IsDropFrame() }

// Variant returns the sign capability of t.
func (t Timecode) Variant() Variant { return t.variant }

// Sign returns -1 for negative timecodes and 1 otherwise.
func (t Timecode) Sign() int {
	if t.frameNumber < 0 {
		return -1
	}
	return 1
}

// Components returns the display fields of t.
func (t Timecode) Components() Components {
	return splitFrameNumber(t.rate, t.frameNumber)
}

// BCD returns t packed as 0xHHMMSSFF.
func (t Timecode) BCD() (int64, error) {
	return EncodeBCD(t.rate, t.frameNumber)
}

// Elapsed returns the real time t represents at its nominal rate,
// frameNumber * Den / Num, truncated to nanoseconds. time.Duration covers
// about 292 years; beyond that Elapsed saturates at the largest duration of
// the same sign. Use Seconds for the full range.
func (t Timecode) Elapsed() time.Duration {
	r := t.rate.Rate()
	if r.Num == 0 {
		return 0
	}
	ns := new(big.Int).Mul(big.NewInt(t.frameNumber), big.NewInt(r.Den*int64(time.Second)))
	ns.Quo(ns, big.NewInt(r.Num))
	if !ns.IsInt64() {
		if ns.Sign() < 0 {
			return time.Duration(math.MinInt64)
		}
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns.Int64())
}

// Seconds returns frameNumber * Den / Num as the nearest float64.
func (t Timecode) Seconds() float64 {
	r := t.rate.Rate()
	if r.Num == 0 {
		return 0
	}
	f, _ := new(big.Rat).SetFrac(
		new(big.Int).Mul(big.NewInt(t.frameNumber), big.NewInt(r.Den)),
		big.NewInt(r.Num),
	).Float64()
	return f
}

// Next returns the timecode one frame later.
func (t Timecode) Next() Timecode { return t.AddFrames(1) }

// Prev returns the timecode one frame earlier.
func (t Timecode) Prev() Timecode { return t.SubFrames(1) }

// String renders t through the codec.
func (t Timecode) String() string {
	return Encode(t.rate, t.frameNumber)
}

// Fractional renders t as HH:MM:SS.fff.
func (t Timecode) Fractional() string {
	return EncodeFractional(t.rate, t.frameNumber)
}

// Compare orders t and o by the instant they denote. Identical rates compare
// frame numbers; different rates compare elapsed time exactly.
func (t Timecode) Compare(o Timecode) int {
	if t.rate.Equal(o.rate) {
		switch {
		case t.frameNumber < o.frameNumber:
			return -1
		case t.frameNumber > o.frameNumber:
			return 1
		}
		return 0
	}

	// a/ra vs b/rb  <=>  a*ra.Den*rb.Num vs b*rb.Den*ra.Num
	ra, rb := t.rate.Rate(), o.rate.Rate()
	lhs := new(big.Int).Mul(big.NewInt(t.frameNumber), big.NewInt(ra.Den))
	lhs.Mul(lhs, big.NewInt(rb.Num))
	rhs := new(big.Int).Mul(big.NewInt(o.frameNumber), big.NewInt(rb.Den))
	rhs.Mul(rhs, big.NewInt(ra.Num))
	return lhs.Cmp(rhs)
}

// Equal reports whether t and o denote the same instant.
func (t Timecode) Equal(o Timecode) bool { return t.Compare(o) == 0 }

// Less reports whether t is earlier than o.
func (t Timecode) Less(o Timecode) bool { return t.Compare(o) < 0 }

type timecodeJSON struct {
	FrameRate   string `json:"framerate"`
	DropFrame   bool   `json:"drop_frame"`
	Timecode    string `json:"timecode"`
	FrameNumber int64  `json:"frame_number"`
	Frames      uint64 `json:"frames"`
}

// MarshalJSON implements json.Marshaler.
func (t Timecode) MarshalJSON() ([]byte, error) {
	return json.Marshal(timecodeJSON{
		FrameRate:   t.rate.Label(),
		DropFrame:   t.rate.IsDropFrame(),
		Timecode:    t.String(),
		FrameNumber: t.frameNumber,
		Frames:      t.Frames(),
	})
}

// UnmarshalJSON implements json.Unmarshaler. The frame number wins when
// both it and the timecode string are present.
func (t *Timecode) UnmarshalJSON(data []byte) error {
	var raw struct {
		FrameRate   string `json:"framerate"`
		DropFrame   *bool  `json:"drop_frame"`
		Timecode    string `json:"timecode"`
		FrameNumber *int64 `json:"frame_number"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fr, err := ParseFrameRate(raw.FrameRate)
	if err != nil {
		return err
	}
	if raw.DropFrame != nil {
		if fr, err = fr.WithDropFrame(*raw.DropFrame); err != nil {
			return err
		}
	}

	switch {
	case raw.FrameNumber != nil:
		*t = FromFrameNumber(fr, *raw.FrameNumber)
	case raw.Timecode != "":
		tc, err := FromString(fr, raw.Timecode)
		if err != nil {
			return err
		}
		*t = tc
	default:
		*t = FromFrameNumber(fr, 0)
	}
	return nil
}
