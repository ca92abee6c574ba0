package timecode

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		rate string
		in   string
		want int64
	}{
		{"29.97", "00:00:20;00", 600},
		{"29.97", "00:00:59;29", 1799},
		{"29.97", "00:01:00;02", 1800},
		{"29.97", "00:01:59;29", 3597},
		{"29.97", "00:02:00;02", 3598},
		{"29.97", "00:10:00;00", 17982},
		{"29.97", "00:10:00;01", 17983},
		{"29.97", "01:00:00;00", 107892},
		{"29.97", "00:00:01:00", 30},
		{"59.94", "00:01:00;04", 3600},
		{"59.94", "00:10:00;00", 35964},
		{"24", "00:00:30:00", 720},
		{"24", "00:00:30;00", 720},
		{"23.976", "01:00:00:00", 86400},
		{"25", "01:00:00:00", 90000},
		{"30", "00:01:00:00", 1800},
		{"ms", "00:00:01.040", 1040},
		{"ms", "00:00:01:040", 1040},
		{"frames", "00:01:00:00", 60},
		{"24", "-00:00:01:00", -24},
		{"29.97", "-00:00:04;01", -121},
		{"24", "-00:00:00:00", 0},
		{"24", "25:00:00:00", 25 * 3600 * 24},
		{"24", "100:00:00:00", 100 * 3600 * 24},
		{"25", "00:00:00.040", 1},
		{"25", "00:00:01.5", 38},
		{"24", "00:00:00.999", 24},
		{"29.97", "00:01:00.067", 1800},
		{"29.97", "-00:00:01.5", -45},
		{"frames", "00:00:10.5", 11},
	}

	for _, tt := range tests {
		t.Run(tt.rate+" "+tt.in, func(t *testing.T) {
			got, err := Decode(MustParseFrameRate(tt.rate), tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		rate string
		in   string
	}{
		{"29.97", "00:01:00;00"},
		{"29.97", "00:01:00;01"},
		{"29.97", "00:01:00:01"},
		{"29.97", "-00:09:00;00"},
		{"59.94", "00:01:00;03"},
		{"29.97", "00:00:00;30"},
		{"24", "00:00:00:24"},
		{"25", "00:00:01."},
		{"25", "00:00:01.4a"},
		{"25", "00:00:01.0000000001"},
		{"29.97", "00:01:00.010"},
		{"24", "00:00.5"},
		{"24", "0:00:00:00"},
		{"24", "00:60:00:00"},
		{"24", "00:00:60:00"},
		{"24", "00:0:00:00"},
		{"24", "00:00:00:0"},
		{"24", "00:00:00:000"},
		{"ms", "00:00:00.40"},
		{"24", "00:00:00"},
		{"24", "00:00:00:00:00"},
		{"24", "aa:00:00:00"},
		{"24", "00:00:0a:00"},
		{"24", "+00:00:00:00"},
		{"24", "--00:00:00:00"},
		{"24", " 00:00:00:00"},
		{"24", ""},
		{"24", "-"},
	}

	for _, tt := range tests {
		t.Run(tt.rate+" "+tt.in, func(t *testing.T) {
			_, err := Decode(MustParseFrameRate(tt.rate), tt.in)
			assert.ErrorIs(t, err, ErrInvalidTimecodeFormat)
		})
	}

	t.Run("zero frame rate", func(t *testing.T) {
		_, err := Decode(FrameRate{}, "00:00:00:00")
		assert.ErrorIs(t, err, ErrInvalidFrameRate)
	})
}

func TestDecode_NonDropAcceptsMinuteBoundaries(t *testing.T) {
	fr := MustParseFrameRate("29.97").NonDrop()
	n, err := Decode(fr, "00:01:00:00")
	require.NoError(t, err)
	assert.Equal(t, int64(1800), n)
	assert.Equal(t, "00:01:00:00", Encode(fr, n))
}

func TestEncode(t *testing.T) {
	tests := []struct {
		rate string
		in   int64
		want string
	}{
		{"29.97", 0, "00:00:00;00"},
		{"29.97", 599, "00:00:19;29"},
		{"29.97", 600, "00:00:20;00"},
		{"29.97", 1799, "00:00:59;29"},
		{"29.97", 1800, "00:01:00;02"},
		{"29.97", 17982, "00:10:00;00"},
		{"29.97", 107892, "01:00:00;00"},
		{"29.97", -121, "-00:00:04;01"},
		{"59.94", 3600, "00:01:00;04"},
		{"24", 121, "00:00:05:01"},
		{"24", 720, "00:00:30:00"},
		{"24", -1, "-00:00:00:01"},
		{"24", 24 * 3600 * 24, "24:00:00:00"},
		{"24", 100 * 3600 * 24, "100:00:00:00"},
		{"25", 89999, "00:59:59:24"},
		{"ms", 1040, "00:00:01.040"},
		{"frames", 61, "00:01:01:00"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %d", tt.rate, tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(MustParseFrameRate(tt.rate), tt.in))
		})
	}

	assert.Empty(t, Encode(FrameRate{}, 10))
}

func TestCodec_FrameNumberRoundTrip(t *testing.T) {
	for _, label := range Labels() {
		fr := MustParseFrameRate(label)
		rates := []FrameRate{fr}
		if fr.IsDropFrame() {
			rates = append(rates, fr.NonDrop())
		}

		for _, fr := range rates {
			t.Run(fmt.Sprintf("%s drop=%v", label, fr.IsDropFrame()), func(t *testing.T) {
				check := func(n int64) {
					s := Encode(fr, n)
					got, err := Decode(fr, s)
					require.NoError(t, err, "frame %d encoded as %q", n, s)
					require.Equal(t, n, got, "frame %d encoded as %q", n, s)
				}

				for n := int64(-40000); n <= 40000; n++ {
					check(n)
				}
				for _, n := range []int64{1 << 31, -(1 << 31), 1 << 40, -(1 << 40)} {
					check(n)
				}
			})
		}
	}
}

func TestCodec_Int64Limits(t *testing.T) {
	for _, label := range []string{"29.97", "59.94", "24", "ms"} {
		fr := MustParseFrameRate(label)
		t.Run(label, func(t *testing.T) {
			for _, n := range []int64{math.MaxInt64, math.MaxInt64 - 1, math.MinInt64, math.MinInt64 + 1} {
				s := Encode(fr, n)
				assert.NotContains(t, s[1:], "-", "frame %d encoded as %q", n, s)
				assert.Equal(t, n < 0, s[0] == '-')

				got, err := Decode(fr, s)
				require.NoError(t, err, "frame %d encoded as %q", n, s)
				assert.Equal(t, n, got)
			}

			// The magnitude of math.MinInt64 is one past math.MaxInt64.
			positive := Encode(fr, math.MinInt64)[1:]
			_, err := Decode(fr, positive)
			assert.ErrorIs(t, err, ErrInvalidTimecodeFormat)
		})
	}

	t.Run("hours overflow", func(t *testing.T) {
		for _, s := range []string{"999999999999999:00:00:00", "-999999999999999:00:00:00", "9223372036854775807:00:00:00"} {
			_, err := Decode(MustParseFrameRate("24"), s)
			assert.ErrorIs(t, err, ErrInvalidTimecodeFormat, s)
		}
		_, err := Decode(MustParseFrameRate("24"), "99999999999999999999:00:00:00")
		assert.ErrorIs(t, err, ErrInvalidTimecodeFormat)
	})
}

func TestEncodeFractional(t *testing.T) {
	tests := []struct {
		rate string
		in   int64
		want string
	}{
		{"25", 0, "00:00:00.000"},
		{"25", 1, "00:00:00.040"},
		{"24", 12, "00:00:00.500"},
		{"24", -36, "-00:00:01.500"},
		{"29.97", 1800, "00:01:00.067"},
		{"30", 29, "00:00:00.967"},
		{"ms", 1040, "00:00:01.040"},
		{"frames", 61, "00:01:01.000"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %d", tt.rate, tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeFractional(MustParseFrameRate(tt.rate), tt.in))
		})
	}

	assert.Empty(t, EncodeFractional(FrameRate{}, 10))
}

func TestCodec_FractionalRoundTrip(t *testing.T) {
	for _, label := range Labels() {
		fr := MustParseFrameRate(label)
		t.Run(label, func(t *testing.T) {
			for n := int64(-20000); n <= 20000; n++ {
				s := EncodeFractional(fr, n)
				got, err := Decode(fr, s)
				require.NoError(t, err, "frame %d encoded as %q", n, s)
				require.Equal(t, n, got, "frame %d encoded as %q", n, s)
			}
		})
	}
}

func TestCodec_StringRoundTrip(t *testing.T) {
	for _, label := range []string{"29.97", "59.94", "24", "25"} {
		fr := MustParseFrameRate(label)
		t.Run(label, func(t *testing.T) {
			accepted := 0
			for mm := 0; mm <= 11; mm++ {
				for ss := 0; ss < 60; ss++ {
					for ff := int64(0); ff < fr.RoundedFPS(); ff++ {
						s := fmt.Sprintf("00:%02d:%02d%c%02d", mm, ss, fr.separator(), ff)
						n, err := Decode(fr, s)
						if err != nil {
							continue
						}
						accepted++
						require.Equal(t, s, Encode(fr, n))
						if n != 0 {
							require.Equal(t, "-"+s, Encode(fr, -n), "negative of %q", s)
						}
					}
				}
			}

			// Twelve minutes of fields minus the frame numbers skipped on the
			// ten non-exempt minute boundaries (minutes 1-9 and 11).
			want := 12*60*int(fr.RoundedFPS()) - 10*int(fr.DroppedPerMinute())
			assert.Equal(t, want, accepted)
		})
	}
}

func TestCodec_DropFrameSkip(t *testing.T) {
	for _, label := range []string{"29.97", "59.94"} {
		fr := MustParseFrameRate(label)
		drop := fr.DroppedPerMinute()
		t.Run(label, func(t *testing.T) {
			for n := int64(0); n < 3*fr.RoundedFPS()*600; n++ {
				c := splitFrameNumber(fr, n)
				if c.Minutes%10 != 0 && c.Seconds == 0 {
					require.GreaterOrEqual(t, c.Frames, drop, "frame %d rendered as %s", n, Encode(fr, n))
				}
			}

			for _, mm := range []int{1, 2, 9, 11, 59} {
				for ff := int64(0); ff < drop; ff++ {
					s := fmt.Sprintf("00:%02d:00;%02d", mm, ff)
					_, err := Decode(fr, s)
					assert.ErrorIs(t, err, ErrInvalidTimecodeFormat, s)
				}
			}
		})
	}
}

func TestBCD(t *testing.T) {
	fr := MustParseFrameRate("24")

	n, err := DecodeBCD(fr, 0x01020304)
	require.NoError(t, err)
	assert.Equal(t, int64(89356), n)

	v, err := EncodeBCD(fr, n)
	require.NoError(t, err)
	assert.Equal(t, int64(0x01020304), v)

	n, err = DecodeBCD(fr, -0x00000100)
	require.NoError(t, err)
	assert.Equal(t, int64(-24), n)

	v, err = EncodeBCD(fr, -24)
	require.NoError(t, err)
	assert.Equal(t, int64(-0x00000100), v)

	t.Run("drop-frame", func(t *testing.T) {
		df := MustParseFrameRate("29.97")
		n, err := DecodeBCD(df, 0x00010002)
		require.NoError(t, err)
		assert.Equal(t, int64(1800), n)

		_, err = DecodeBCD(df, 0x00010000)
		assert.ErrorIs(t, err, ErrInvalidTimecodeFormat)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := DecodeBCD(fr, 0x0000000A)
		assert.ErrorIs(t, err, ErrInvalidTimecodeFormat)

		_, err = DecodeBCD(fr, 0x1_00000000)
		assert.ErrorIs(t, err, ErrInvalidTimecodeFormat)

		_, err = EncodeBCD(fr, 100*3600*24)
		assert.ErrorIs(t, err, ErrInvalidTimecodeFormat)

		_, err = EncodeBCD(MustParseFrameRate("ms"), 999)
		assert.ErrorIs(t, err, ErrInvalidTimecodeFormat)

		_, err = EncodeBCD(FrameRate{}, 1)
		assert.ErrorIs(t, err, ErrInvalidFrameRate)
	})
}
