package timecode

import (
	"encoding/json"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("from string", func(t *testing.T) {
		tc, err := New("29.97", "00:00:20;00")
		require.NoError(t, err)
		assert.Equal(t, int64(600), tc.FrameNumber())
		assert.Equal(t, "29.97", tc.FrameRate().Label())
		assert.True(t, tc.IsDropFrame())
		assert.Equal(t, Signed, tc.Variant())
	})

	t.Run("from frame number", func(t *testing.T) {
		tc, err := New("24", 720)
		require.NoError(t, err)
		assert.Equal(t, "00:00:30:00", tc.String())

		tc, err = New("24", int64(-720))
		require.NoError(t, err)
		assert.Equal(t, "-00:00:30:00", tc.String())
		assert.Equal(t, uint64(720), tc.Frames())
		assert.Equal(t, -1, tc.Sign())
	})

	t.Run("invalid frame rate", func(t *testing.T) {
		_, err := New("12.5", 0)
		assert.ErrorIs(t, err, ErrInvalidFrameRate)
	})

	t.Run("invalid timecode", func(t *testing.T) {
		_, err := New("29.97", "00:01:00;00")
		assert.ErrorIs(t, err, ErrInvalidTimecodeFormat)
	})
}

func TestNonNegative(t *testing.T) {
	fr := MustParseFrameRate("25")

	_, err := NonNegativeFromFrameNumber(fr, -1)
	assert.ErrorIs(t, err, ErrNegativeFrameNumber)

	_, err = NonNegativeFromString(fr, "-00:00:01:00")
	assert.ErrorIs(t, err, ErrNegativeFrameNumber)

	_, err = NonNegativeFromString(fr, "00:00:01:25")
	assert.ErrorIs(t, err, ErrInvalidTimecodeFormat)

	nn, err := NonNegativeFromString(fr, "00:00:01:00")
	require.NoError(t, err)
	assert.Equal(t, NonNegative, nn.Variant())
	assert.Equal(t, "non-negative", nn.Variant().String())
	assert.Equal(t, "signed", Signed.String())
}

func TestFromSecondsAndBCD(t *testing.T) {
	assert.Equal(t, int64(62), FromSeconds(MustParseFrameRate("25"), 2.5).FrameNumber())
	assert.Equal(t, int64(60), FromSeconds(MustParseFrameRate("29.97"), 2).FrameNumber())

	tc, err := FromBCD(MustParseFrameRate("24"), 0x00000110)
	require.NoError(t, err)
	assert.Equal(t, int64(34), tc.FrameNumber())

	v, err := tc.BCD()
	require.NoError(t, err)
	assert.Equal(t, int64(0x00000110), v)
}

func TestComponents(t *testing.T) {
	tc := FromFrameNumber(MustParseFrameRate("29.97"), -121)
	assert.Equal(t, Components{Negative: true, Seconds: 4, Frames: 1}, tc.Components())

	tc = FromFrameNumber(MustParseFrameRate("29.97"), 107892+1800)
	assert.Equal(t, Components{Hours: 1, Minutes: 1, Frames: 2}, tc.Components())
}

func TestElapsed(t *testing.T) {
	assert.Equal(t, time.Second, FromFrameNumber(MustParseFrameRate("24"), 24).Elapsed())
	assert.Equal(t, 1001*time.Second, FromFrameNumber(MustParseFrameRate("29.97"), 30000).Elapsed())
	assert.Equal(t, -40*time.Millisecond, FromFrameNumber(MustParseFrameRate("25"), -1).Elapsed())
	assert.Equal(t, time.Duration(0), Timecode{}.Elapsed())

	t.Run("saturates", func(t *testing.T) {
		fr := MustParseFrameRate("30")
		assert.Equal(t, time.Duration(math.MaxInt64), FromFrameNumber(fr, math.MaxInt64).Elapsed())
		assert.Equal(t, time.Duration(math.MinInt64), FromFrameNumber(fr, math.MinInt64).Elapsed())
		// Just past the range of time.Duration.
		assert.Equal(t, time.Duration(math.MaxInt64), FromFrameNumber(fr, 280_000_000_000).Elapsed())
	})
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, 1.0, FromFrameNumber(MustParseFrameRate("24"), 24).Seconds())
	assert.Equal(t, 1001.0, FromFrameNumber(MustParseFrameRate("29.97"), 30000).Seconds())
	assert.Equal(t, -0.04, FromFrameNumber(MustParseFrameRate("25"), -1).Seconds())
	assert.Equal(t, 0.0, Timecode{}.Seconds())

	secs := FromFrameNumber(MustParseFrameRate("29.97"), math.MaxInt64).Seconds()
	assert.InEpsilon(t, float64(math.MaxInt64)*1001/30000, secs, 1e-12)
	assert.Less(t, FromFrameNumber(MustParseFrameRate("24"), math.MinInt64).Seconds(), -3.8e17)
}

func TestNextPrev(t *testing.T) {
	fr := MustParseFrameRate("29.97")
	tc, err := FromString(fr, "00:00:59;29")
	require.NoError(t, err)

	assert.Equal(t, "00:01:00;02", tc.Next().String())
	assert.Equal(t, "00:00:59;29", tc.Next().Prev().String())
	assert.Equal(t, "00:00:59;29", tc.String(), "receiver is unchanged")
}

// Worked examples: 599@29.97 against 720@24 ("00:00:30:00").
func TestMixedRateScenarios(t *testing.T) {
	ntsc := MustParseFrameRate("29.97")
	film := MustParseFrameRate("24")

	a := FromFrameNumber(ntsc, 599)
	b, err := FromString(film, "00:00:30:00")
	require.NoError(t, err)
	require.Equal(t, int64(720), b.FrameNumber())

	t.Run("a - b keeps the left rate", func(t *testing.T) {
		c := a.Sub(b)
		assert.Equal(t, "29.97", c.FrameRate().Label())
		assert.True(t, c.FrameRate().Equal(ntsc))
		assert.Equal(t, int64(-121), c.FrameNumber())
		assert.Equal(t, "-00:00:04;01", c.String())
	})

	t.Run("b - a keeps the left rate", func(t *testing.T) {
		d := b.Sub(a)
		assert.Equal(t, "24", d.FrameRate().Label())
		assert.Equal(t, int64(121), d.FrameNumber())
		assert.Equal(t, "00:00:05:01", d.String())
	})

	t.Run("addition precedence", func(t *testing.T) {
		assert.True(t, a.Add(b).FrameRate().Equal(ntsc))
		assert.True(t, b.Add(a).FrameRate().Equal(film))
		assert.Equal(t, a.Add(b).FrameNumber(), b.Add(a).FrameNumber())
	})

	t.Run("division by zero leaves operands unchanged", func(t *testing.T) {
		zero := FromFrameNumber(film, 0)
		_, err := a.Div(zero)
		assert.ErrorIs(t, err, ErrDivisionByZero)
		assert.Equal(t, int64(599), a.FrameNumber())
		assert.Equal(t, int64(0), zero.FrameNumber())
	})
}

func TestCompare(t *testing.T) {
	oneSecond30 := FromFrameNumber(MustParseFrameRate("30"), 30)
	oneSecond24 := FromFrameNumber(MustParseFrameRate("24"), 24)

	assert.True(t, oneSecond30.Equal(oneSecond24))
	assert.Equal(t, 0, oneSecond30.Compare(oneSecond24))
	assert.NotEqual(t, oneSecond30.FrameNumber(), oneSecond24.FrameNumber())

	t.Run("same rate compares frame numbers", func(t *testing.T) {
		fr := MustParseFrameRate("25")
		assert.Equal(t, -1, FromFrameNumber(fr, -3).Compare(FromFrameNumber(fr, 2)))
		assert.Equal(t, 1, FromFrameNumber(fr, 3).Compare(FromFrameNumber(fr, 2)))
		assert.True(t, FromFrameNumber(fr, 3).Equal(FromFrameNumber(fr, 3)))
	})

	t.Run("raw frame numbers are not compared across rates", func(t *testing.T) {
		a := FromFrameNumber(MustParseFrameRate("30"), 24)
		b := FromFrameNumber(MustParseFrameRate("24"), 24)
		assert.False(t, a.Equal(b))
		assert.True(t, a.Less(b))
	})

	t.Run("29.97 runs slower than 30", func(t *testing.T) {
		ntsc := FromFrameNumber(MustParseFrameRate("29.97"), 30)
		assert.Equal(t, 1, ntsc.Compare(oneSecond30))
		assert.Equal(t, -1, oneSecond30.Compare(ntsc))
	})

	t.Run("drop and non-drop at the same nominal rate", func(t *testing.T) {
		df := FromFrameNumber(MustParseFrameRate("29.97"), 1800)
		ndf := FromFrameNumber(MustParseFrameRate("29.97").NonDrop(), 1800)
		assert.True(t, df.Equal(ndf))
		assert.NotEqual(t, df.String(), ndf.String())
	})

	t.Run("negative values across rates", func(t *testing.T) {
		a := FromFrameNumber(MustParseFrameRate("50"), -100)
		b := FromFrameNumber(MustParseFrameRate("25"), -50)
		assert.True(t, a.Equal(b))
		assert.True(t, a.Less(FromFrameNumber(MustParseFrameRate("25"), -49)))
	})
}

func TestSignLaws(t *testing.T) {
	for _, label := range []string{"23.976", "29.97", "59.94", "25"} {
		fr := MustParseFrameRate(label)
		for _, n := range []int64{-100000, -1, 0, 1, 1799, 1800, 17982, 100000} {
			x := FromFrameNumber(fr, n)
			assert.Equal(t, x, x.Neg().Neg())
			assert.Equal(t, int64(0), x.Add(x.Neg()).FrameNumber())
			if n != 0 {
				assert.NotEqual(t, strings.HasPrefix(x.String(), "-"), strings.HasPrefix(x.Neg().String(), "-"))
				assert.Equal(t, strings.TrimPrefix(x.String(), "-"), strings.TrimPrefix(x.Neg().String(), "-"))
			}
		}
	}
}

func TestJSON(t *testing.T) {
	tc := FromFrameNumber(MustParseFrameRate("29.97"), -121)
	data, err := json.Marshal(tc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"framerate":"29.97","drop_frame":true,"timecode":"-00:00:04;01","frame_number":-121,"frames":121}`, string(data))

	var back Timecode
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, tc, back)

	t.Run("timecode string", func(t *testing.T) {
		var got Timecode
		require.NoError(t, json.Unmarshal([]byte(`{"framerate":"29.97","drop_frame":false,"timecode":"00:01:00:00"}`), &got))
		assert.Equal(t, int64(1800), got.FrameNumber())
		assert.False(t, got.IsDropFrame())
	})

	t.Run("errors", func(t *testing.T) {
		var got Timecode
		assert.ErrorIs(t, json.Unmarshal([]byte(`{"framerate":"7"}`), &got), ErrInvalidFrameRate)
		assert.ErrorIs(t, json.Unmarshal([]byte(`{"framerate":"24","drop_frame":true}`), &got), ErrInvalidFrameRate)
		assert.ErrorIs(t, json.Unmarshal([]byte(`{"framerate":"24","timecode":"1"}`), &got), ErrInvalidTimecodeFormat)
	})
}

func TestConcurrentUse(t *testing.T) {
	fr := MustParseFrameRate("29.97")
	base := FromFrameNumber(fr, 17982)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				tc := base.AddFrames(int64(i*j)).Sub(base)
				n, err := Decode(fr, tc.String())
				assert.NoError(t, err)
				assert.Equal(t, int64(i*j), n)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int64(17982), base.FrameNumber())
}
