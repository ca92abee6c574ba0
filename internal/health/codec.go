package health

import (
	"context"
	"fmt"

	"github.com/zsiec/stimecode/pkg/timecode"
)

type codecVector struct {
	rate   string
	str    string
	frames int64
}

// Reference pairs the codec must reproduce in both directions.
var codecVectors = []codecVector{
	{"29.97", "00:01:00;02", 1800},
	{"29.97", "00:10:00;00", 17982},
	{"29.97", "-00:00:00;01", -1},
	{"59.94", "00:01:00;04", 3600},
	{"24", "01:00:00:00", 86400},
	{"25", "-00:00:01:00", -25},
	{"ms", "00:00:01.500", 1500},
}

// CodecChecker verifies every registered frame rate encodes and decodes
// consistently. A failure here means the binary itself is broken.
type CodecChecker struct {
	samples []int64
}

func NewCodecChecker() *CodecChecker {
	return &CodecChecker{
		samples: []int64{0, 1, -1, 1799, 1800, 17981, 17982, -17983, 107892, 2589408},
	}
}

func (c *CodecChecker) Name() string {
	return "codec"
}

func (c *CodecChecker) Check(ctx context.Context) error {
	for _, v := range codecVectors {
		fr, err := timecode.ParseFrameRate(v.rate)
		if err != nil {
			return fmt.Errorf("rate %s: %w", v.rate, err)
		}
		n, err := timecode.Decode(fr, v.str)
		if err != nil {
			return fmt.Errorf("decode %s@%s: %w", v.str, v.rate, err)
		}
		if n != v.frames {
			return fmt.Errorf("decode %s@%s: got %d, want %d", v.str, v.rate, n, v.frames)
		}
		if s := timecode.Encode(fr, v.frames); s != v.str {
			return fmt.Errorf("encode %d@%s: got %q, want %q", v.frames, v.rate, s, v.str)
		}
	}

	for _, label := range timecode.Labels() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fr := timecode.MustParseFrameRate(label)
		for _, n := range c.samples {
			s := timecode.Encode(fr, n)
			back, err := timecode.Decode(fr, s)
			if err != nil {
				return fmt.Errorf("round trip %d@%s via %q: %w", n, label, s, err)
			}
			if back != n {
				return fmt.Errorf("round trip %d@%s via %q returned %d", n, label, s, back)
			}
		}
	}

	return nil
}

func (c *CodecChecker) Details() map[string]interface{} {
	return map[string]interface{}{
		"frame_rates": len(timecode.Labels()),
		"vectors":     len(codecVectors),
	}
}
