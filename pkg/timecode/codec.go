package timecode

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"
)

// Components are the display fields of a timecode.
type Components struct {
	Negative bool
	Hours    int64
	Minutes  int64
	Seconds  int64
	Frames   int64
}

// Decode converts a timecode string to a signed frame number for fr.
//
// The accepted grammar is ["-"] HH ":" MM ":" SS sep FF where sep is ":" or
// ";" for every rate (and also "." for the millisecond rate). A leading "-"
// negates the frame number the remaining digits describe. For drop-frame
// rates the skipped frame numbers at the start of every minute not divisible
// by ten are rejected.
//
// Other rates also accept fractional seconds, HH:MM:SS.fff, where the
// fraction is rounded to the nearest frame: "00:00:00.040" at 25 is frame 1.
//
// Strings whose frame number does not fit in an int64 are rejected.
func Decode(fr FrameRate, s string) (int64, error) {
	c, err := parseComponents(fr, s)
	if err != nil {
		return 0, err
	}
	n, ok := c.frameNumber(fr)
	if !ok {
		return 0, fmt.Errorf("%w: %q: frame number out of range", ErrInvalidTimecodeFormat, s)
	}
	return n, nil
}

// Encode converts a signed frame number to its timecode string for fr.
// Zero never carries a sign. Hours are not wrapped at 24.
func Encode(fr FrameRate, frameNumber int64) string {
	if fr.IsZero() {
		return ""
	}
	return splitFrameNumber(fr, frameNumber).format(fr)
}

// EncodeFractional renders frameNumber as HH:MM:SS.fff, the frame field
// expressed as milliseconds of the nominal second. Decode reads the result
// back to the same frame number.
func EncodeFractional(fr FrameRate, frameNumber int64) string {
	if fr.IsZero() {
		return ""
	}
	c := splitFrameNumber(fr, frameNumber)
	fps := fr.RoundedFPS()
	ms := (c.Frames*2000 + fps) / (2 * fps)

	var b strings.Builder
	if c.Negative && (c.Hours|c.Minutes|c.Seconds|c.Frames) != 0 {
		b.WriteByte('-')
	}
	fmt.Fprintf(&b, "%02d:%02d:%02d.%03d", c.Hours, c.Minutes, c.Seconds, ms)
	return b.String()
}

// frameNumber applies the drop-frame correction to the display fields. It
// reports false when the result does not fit in an int64.
func (c Components) frameNumber(fr FrameRate) (int64, bool) {
	fps := uint64(fr.RoundedFPS())
	totalMinutes, ok := mulAdd(uint64(c.Hours), 60, uint64(c.Minutes))
	if !ok {
		return 0, false
	}
	secs, ok := mulAdd(totalMinutes, 60, uint64(c.Seconds))
	if !ok {
		return 0, false
	}
	n, ok := mulAdd(secs, fps, uint64(c.Frames))
	if !ok {
		return 0, false
	}
	// At most drop of every fps*60 frame numbers are skipped, so this
	// cannot exceed n.
	n -= uint64(fr.DroppedPerMinute()) * (totalMinutes - totalMinutes/10)

	if c.Negative {
		if n > 1<<63 {
			return 0, false
		}
		return int64(-n), true
	}
	if n > math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}

// mulAdd returns a*b + c, or false on uint64 overflow.
func mulAdd(a, b, c uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, false
	}
	sum, carry := bits.Add64(lo, c, 0)
	return sum, carry == 0
}

// splitFrameNumber is the inverse of Components.frameNumber: it adds the
// skipped frame numbers back for every elapsed non-exempt minute. The
// magnitude is handled as a uint64 so math.MinInt64 and the drop-frame
// correction near math.MaxInt64 do not wrap.
func splitFrameNumber(fr FrameRate, frameNumber int64) Components {
	negative := frameNumber < 0
	n := uint64(frameNumber)
	if negative {
		n = -n
	}

	fps := uint64(fr.RoundedFPS())
	if drop := uint64(fr.DroppedPerMinute()); drop > 0 {
		perMinute := fps*60 - drop
		perTenMinutes := fps*600 - drop*9
		tens := n / perTenMinutes
		rem := n % perTenMinutes
		n += drop * 9 * tens
		if rem > drop {
			n += drop * ((rem - drop) / perMinute)
		}
	}

	secs := n / fps
	return Components{
		Negative: negative,
		Hours:    int64(secs / 3600),
		Minutes:  int64(secs / 60 % 60),
		Seconds:  int64(secs % 60),
		Frames:   int64(n % fps),
	}
}

func (c Components) format(fr FrameRate) string {
	var b strings.Builder
	if c.Negative && (c.Hours|c.Minutes|c.Seconds|c.Frames) != 0 {
		b.WriteByte('-')
	}
	fmt.Fprintf(&b, "%02d:%02d:%02d%c%0*d", c.Hours, c.Minutes, c.Seconds, fr.separator(), fr.fieldWidth(), c.Frames)
	return b.String()
}

// maxFractionDigits bounds the fractional seconds field so the rounding
// arithmetic stays in int64.
const maxFractionDigits = 9

func parseComponents(fr FrameRate, s string) (Components, error) {
	if fr.IsZero() {
		return Components{}, fmt.Errorf("%w: zero value", ErrInvalidFrameRate)
	}

	bad := func(reason string) error {
		return fmt.Errorf("%w: %q: %s", ErrInvalidTimecodeFormat, s, reason)
	}

	var c Components
	body := s
	if strings.HasPrefix(body, "-") {
		c.Negative = true
		body = body[1:]
	}

	cut := strings.LastIndexAny(body, ":;.")
	if cut < 0 {
		return Components{}, bad("missing frame separator")
	}
	fractional := body[cut] == '.' && !fr.msField

	head := strings.Split(body[:cut], ":")
	if len(head) != 3 {
		return Components{}, bad("expected HH:MM:SS before the frame field")
	}

	var err error
	if c.Hours, err = parseDigits(head[0], 2, true); err != nil {
		return Components{}, bad("hours: " + err.Error())
	}
	if c.Minutes, err = parseDigits(head[1], 2, false); err != nil {
		return Components{}, bad("minutes: " + err.Error())
	}
	if c.Seconds, err = parseDigits(head[2], 2, false); err != nil {
		return Components{}, bad("seconds: " + err.Error())
	}
	if fractional {
		if c.Frames, err = parseFraction(body[cut+1:], fr.RoundedFPS()); err != nil {
			return Components{}, bad("fraction: " + err.Error())
		}
	} else if c.Frames, err = parseDigits(body[cut+1:], fr.fieldWidth(), false); err != nil {
		return Components{}, bad("frames: " + err.Error())
	}

	if c.Minutes > 59 {
		return Components{}, bad("minutes out of range")
	}
	if c.Seconds > 59 {
		return Components{}, bad("seconds out of range")
	}
	// A fraction may round up to a whole second; the frame count carries.
	if !fractional && c.Frames > fr.RoundedFPS()-1 {
		return Components{}, bad(fmt.Sprintf("frame field exceeds %d", fr.RoundedFPS()-1))
	}
	if drop := fr.DroppedPerMinute(); drop > 0 && c.Minutes%10 != 0 && c.Seconds == 0 && c.Frames < drop {
		return Components{}, bad("frame number is skipped by drop-frame counting")
	}

	return c, nil
}

// parseFraction converts the digits after a decimal point to the nearest
// frame count at fps, rounding halves up.
func parseFraction(field string, fps int64) (int64, error) {
	if len(field) > maxFractionDigits {
		return 0, fmt.Errorf("more than %d digits in %q", maxFractionDigits, field)
	}
	v, err := parseDigits(field, 1, true)
	if err != nil {
		return 0, err
	}
	scale := int64(math.Pow10(len(field)))
	return (2*v*fps + scale) / (2 * scale), nil
}

// parseDigits parses an unsigned decimal field of exactly width digits, or at
// least width digits when open is set.
func parseDigits(field string, width int, open bool) (int64, error) {
	if len(field) < width || (!open && len(field) != width) {
		return 0, fmt.Errorf("expected %d digits, got %q", width, field)
	}
	for i := 0; i < len(field); i++ {
		if field[i] < '0' || field[i] > '9' {
			return 0, fmt.Errorf("non-digit in %q", field)
		}
	}
	return strconv.ParseInt(field, 10, 64)
}

// DecodeBCD converts a packed binary-coded-decimal timecode (0xHHMMSSFF) to a
// frame number. A negative value denotes a negative timecode.
func DecodeBCD(fr FrameRate, v int64) (int64, error) {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	if v > 0xFFFFFFFF {
		return 0, fmt.Errorf("%w: BCD value %#x exceeds 32 bits", ErrInvalidTimecodeFormat, v)
	}

	var fields [4]int64
	for i := range fields {
		b := (v >> (24 - 8*i)) & 0xFF
		hi, lo := b>>4, b&0x0F
		if hi > 9 || lo > 9 {
			return 0, fmt.Errorf("%w: BCD value %#x has a non-decimal nibble", ErrInvalidTimecodeFormat, v)
		}
		fields[i] = hi*10 + lo
	}

	s := fmt.Sprintf("%s%02d:%02d:%02d%c%0*d", sign, fields[0], fields[1], fields[2], fr.separator(), fr.fieldWidth(), fields[3])
	return Decode(fr, s)
}

// EncodeBCD packs the display fields of frameNumber into 0xHHMMSSFF. The
// result is negative for negative frame numbers.
func EncodeBCD(fr FrameRate, frameNumber int64) (int64, error) {
	if fr.IsZero() {
		return 0, fmt.Errorf("%w: zero value", ErrInvalidFrameRate)
	}
	c := splitFrameNumber(fr, frameNumber)
	if c.Hours > 99 || c.Frames > 99 {
		return 0, fmt.Errorf("%w: %s does not fit in packed BCD", ErrInvalidTimecodeFormat, c.format(fr))
	}

	var v int64
	for _, f := range []int64{c.Hours, c.Minutes, c.Seconds, c.Frames} {
		v = v<<8 | (f/10)<<4 | f%10
	}
	if c.Negative {
		v = -v
	}
	return v, nil
}
