package timecode

import "fmt"

// Rational represents a rational number (numerator/denominator).
// Used for nominal frame rates such as 30000/1001.
type Rational struct {
	Num int64 // Numerator
	Den int64 // Denominator
}

// NewRational creates a new rational number in lowest terms with a positive denominator
func NewRational(num, den int64) Rational {
	if den == 0 {
		den = 1
	}
	if den < 0 {
		num, den = -num, -den
	}
	if g := gcd(abs64(num), den); g > 1 {
		num /= g
		den /= g
	}
	return Rational{Num: num, Den: den}
}

// Float64 returns the floating point representation
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Invert returns the inverted rational (den/num)
func (r Rational) Invert() Rational {
	return NewRational(r.Den, r.Num)
}

// Equal compares two rationals after reduction
func (r Rational) Equal(o Rational) bool {
	a, b := NewRational(r.Num, r.Den), NewRational(o.Num, o.Den)
	return a.Num == b.Num && a.Den == b.Den
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Nominal frame rates
var (
	Rate23_976 = Rational{Num: 24000, Den: 1001}
	Rate24     = Rational{Num: 24, Den: 1}
	Rate25     = Rational{Num: 25, Den: 1}
	Rate29_97  = Rational{Num: 30000, Den: 1001}
	Rate30     = Rational{Num: 30, Den: 1}
	Rate48     = Rational{Num: 48, Den: 1}
	Rate50     = Rational{Num: 50, Den: 1}
	Rate59_94  = Rational{Num: 60000, Den: 1001}
	Rate60     = Rational{Num: 60, Den: 1}
	Rate1000   = Rational{Num: 1000, Den: 1}
	Rate1      = Rational{Num: 1, Den: 1}
)

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
