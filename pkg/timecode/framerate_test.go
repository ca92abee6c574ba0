package timecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		label     string
		wantLabel string
		wantFPS   int64
		wantDrop  bool
		wantRate  Rational
	}{
		{"23.976", "23.976", 24, false, Rate23_976},
		{"23.98", "23.98", 24, false, Rate23_976},
		{"24", "24", 24, false, Rate24},
		{"25", "25", 25, false, Rate25},
		{"29.97", "29.97", 30, true, Rate29_97},
		{"30", "30", 30, false, Rate30},
		{"50", "50", 50, false, Rate50},
		{"59.94", "59.94", 60, true, Rate59_94},
		{"60", "60", 60, false, Rate60},
		{"ms", "ms", 1000, false, Rate1000},
		{"frames", "frames", 1, false, Rate1},
		{"30000/1001", "29.97", 30, true, Rate29_97},
		{"24000/1001", "23.98", 24, false, Rate23_976},
		{"60000/1001", "59.94", 60, true, Rate59_94},
		{"25/1", "25", 25, false, Rate25},
		{" 24 ", "24", 24, false, Rate24},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			fr, err := ParseFrameRate(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, fr.Label())
			assert.Equal(t, tt.wantFPS, fr.RoundedFPS())
			assert.Equal(t, tt.wantDrop, fr.IsDropFrame())
			assert.True(t, tt.wantRate.Equal(fr.Rate()))
		})
	}
}

func TestParseFrameRate_Invalid(t *testing.T) {
	for _, label := range []string{"", "31", "29.976", "abc", "1/0", "x/1001", "30000/1001/1", "-24"} {
		t.Run(label, func(t *testing.T) {
			_, err := ParseFrameRate(label)
			assert.ErrorIs(t, err, ErrInvalidFrameRate)
		})
	}
}

func TestMustParseFrameRate_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseFrameRate("bogus") })
	assert.NotPanics(t, func() { MustParseFrameRate("25") })
}

func TestFrameRate_Equal(t *testing.T) {
	df := MustParseFrameRate("29.97")

	assert.True(t, MustParseFrameRate("23.976").Equal(MustParseFrameRate("23.98")))
	assert.True(t, df.Equal(MustParseFrameRate("30000/1001")))
	assert.False(t, df.Equal(df.NonDrop()), "drop flag is part of equality")
	assert.False(t, df.NonDrop().Equal(MustParseFrameRate("30")), "nominal rate is part of equality")
	assert.False(t, MustParseFrameRate("24").Equal(MustParseFrameRate("25")))
}

func TestFrameRate_DropFrame(t *testing.T) {
	assert.Equal(t, int64(2), MustParseFrameRate("29.97").DroppedPerMinute())
	assert.Equal(t, int64(4), MustParseFrameRate("59.94").DroppedPerMinute())
	assert.Equal(t, int64(0), MustParseFrameRate("29.97").NonDrop().DroppedPerMinute())
	assert.Equal(t, int64(0), MustParseFrameRate("25").DroppedPerMinute())

	t.Run("drop cannot be forced on integer rates", func(t *testing.T) {
		_, err := MustParseFrameRate("25").WithDropFrame(true)
		assert.ErrorIs(t, err, ErrInvalidFrameRate)
	})

	t.Run("drop can be restored after NonDrop", func(t *testing.T) {
		fr, err := MustParseFrameRate("59.94").NonDrop().WithDropFrame(true)
		require.NoError(t, err)
		assert.True(t, fr.IsDropFrame())
	})

	t.Run("non-drop leaves the source untouched", func(t *testing.T) {
		fr := MustParseFrameRate("29.97")
		_ = fr.NonDrop()
		assert.True(t, fr.IsDropFrame())
	})
}

func TestFrameRate_Text(t *testing.T) {
	var fr FrameRate
	require.NoError(t, fr.UnmarshalText([]byte("59.94")))
	assert.Equal(t, "59.94", fr.String())

	text, err := fr.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "59.94", string(text))

	assert.ErrorIs(t, fr.UnmarshalText([]byte("59")), ErrInvalidFrameRate)
}

func TestLabels(t *testing.T) {
	labels := Labels()
	assert.Contains(t, labels, "29.97")
	assert.Contains(t, labels, "ms")
	assert.IsIncreasing(t, labels)
	assert.Len(t, labels, len(frameRates))
}

func TestRational(t *testing.T) {
	r := NewRational(60000, 2002)
	assert.Equal(t, Rational{Num: 30000, Den: 1001}, r)
	assert.Equal(t, Rational{Num: -1, Den: 2}, NewRational(1, -2))
	assert.Equal(t, Rational{Num: 5, Den: 1}, NewRational(5, 0))
	assert.Equal(t, Rational{Num: 1001, Den: 30000}, Rate29_97.Invert())
	assert.InDelta(t, 29.97, Rate29_97.Float64(), 0.001)
	assert.Equal(t, "30000/1001", Rate29_97.String())
	assert.True(t, Rational{Num: 48, Den: 2}.Equal(Rate24))
}
