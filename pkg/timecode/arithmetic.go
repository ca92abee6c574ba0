package timecode

import (
	"fmt"
	"math"
	"strings"
)

// Operand is anything that can appear on either side of an arithmetic
// operator: a Timecode, a Frames count or a Scalar.
type Operand interface {
	isOperand()
}

// Frames is a plain frame count operand.
type Frames int64

// Scalar is a plain numeric operand. It is rounded half away from zero to a
// whole frame count before use.
type Scalar float64

func (Timecode) isOperand() {}
func (Frames) isOperand()   {}
func (Scalar) isOperand()   {}

// Op is a binary arithmetic operator.
type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// ParseOp accepts an operator symbol or its name (add, sub, mul, div).
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "+", "add":
		return OpAdd, nil
	case "-", "sub", "subtract":
		return OpSub, nil
	case "*", "mul", "multiply":
		return OpMul, nil
	case "/", "div", "divide":
		return OpDiv, nil
	}
	return 0, fmt.Errorf("%w: operator %q", ErrUnsupportedOperation, s)
}

// Apply combines left and right under op.
//
// The result always takes the frame rate of the Timecode operand on the
// left; frame numbers are combined as raw integers with no rate conversion.
// When a scalar is on the left and a Timecode on the right the reflected
// form is used and the result takes the right operand's rate. Reflected
// division and scalar-only expressions fail with ErrUnsupportedOperation.
func Apply(op Op, left, right Operand) (Timecode, error) {
	switch l := left.(type) {
	case Timecode:
		return l.apply(op, right)
	case Frames, Scalar:
		r, ok := right.(Timecode)
		if !ok {
			return Timecode{}, fmt.Errorf("%w: %s needs a timecode operand", ErrUnsupportedOperation, op)
		}
		n := scalarFrames(l)
		switch op {
		case OpAdd:
			return ReflectedAdd(n, r), nil
		case OpSub:
			return ReflectedSub(n, r), nil
		case OpMul:
			return ReflectedMul(n, r), nil
		}
		return Timecode{}, fmt.Errorf("%w: scalar %s timecode", ErrUnsupportedOperation, op)
	}
	return Timecode{}, fmt.Errorf("%w: operand %T", ErrUnsupportedOperation, left)
}

func (t Timecode) apply(op Op, right Operand) (Timecode, error) {
	if r, ok := right.(Timecode); ok {
		switch op {
		case OpAdd:
			return t.Add(r), nil
		case OpSub:
			return t.Sub(r), nil
		case OpMul:
			return t.Mul(r), nil
		case OpDiv:
			return t.Div(r)
		}
		return Timecode{}, fmt.Errorf("%w: %s", ErrUnsupportedOperation, op)
	}

	switch right.(type) {
	case Frames, Scalar:
	default:
		return Timecode{}, fmt.Errorf("%w: operand %T", ErrUnsupportedOperation, right)
	}
	n := scalarFrames(right)
	switch op {
	case OpAdd:
		return t.AddFrames(n), nil
	case OpSub:
		return t.SubFrames(n), nil
	case OpMul:
		return t.MulFrames(n), nil
	case OpDiv:
		return t.DivFrames(n)
	}
	return Timecode{}, fmt.Errorf("%w: %s", ErrUnsupportedOperation, op)
}

func scalarFrames(o Operand) int64 {
	switch v := o.(type) {
	case Frames:
		return int64(v)
	case Scalar:
		return int64(math.Round(float64(v)))
	}
	return 0
}

// derive builds a result at t's rate. Any Signed input makes the result
// Signed; an all-NonNegative computation stays NonNegative unless the
// result is negative, in which case it is promoted to Signed.
func (t Timecode) derive(n int64, others ...Timecode) Timecode {
	v := t.variant
	for _, o := range others {
		if o.variant == Signed {
			v = Signed
		}
	}
	if n < 0 {
		v = Signed
	}
	return Timecode{rate: t.rate, frameNumber: n, variant: v}
}

// Add returns t + o at t's rate.
func (t Timecode) Add(o Timecode) Timecode {
	return t.derive(t.frameNumber+o.frameNumber, o)
}

// AddFrames returns t + n at t's rate.
func (t Timecode) AddFrames(n int64) Timecode {
	return t.derive(t.frameNumber + n)
}

// Sub returns t - o at t's rate.
func (t Timecode) Sub(o Timecode) Timecode {
	return t.derive(t.frameNumber-o.frameNumber, o)
}

// SubFrames returns t - n at t's rate.
func (t Timecode) SubFrames(n int64) Timecode {
	return t.derive(t.frameNumber - n)
}

// Mul multiplies the raw frame numbers of t and o.
func (t Timecode) Mul(o Timecode) Timecode {
	return t.derive(t.frameNumber*o.frameNumber, o)
}

// MulFrames returns t * n at t's rate.
func (t Timecode) MulFrames(n int64) Timecode {
	return t.derive(t.frameNumber * n)
}

// MulScalar multiplies by f rounded to the nearest integer.
func (t Timecode) MulScalar(f float64) Timecode {
	return t.MulFrames(scalarFrames(Scalar(f)))
}

// Div divides the raw frame numbers of t and o, truncating toward zero.
func (t Timecode) Div(o Timecode) (Timecode, error) {
	if o.frameNumber == 0 {
		return Timecode{}, fmt.Errorf("%w: %s / %s", ErrDivisionByZero, t, o)
	}
	return t.derive(t.frameNumber/o.frameNumber, o), nil
}

// DivFrames returns t / n truncated toward zero.
func (t Timecode) DivFrames(n int64) (Timecode, error) {
	if n == 0 {
		return Timecode{}, fmt.Errorf("%w: %s / 0", ErrDivisionByZero, t)
	}
	return t.derive(t.frameNumber / n), nil
}

// DivScalar divides by f rounded to the nearest integer.
func (t Timecode) DivScalar(f float64) (Timecode, error) {
	return t.DivFrames(scalarFrames(Scalar(f)))
}

// Neg returns t with its frame number negated. Negating a non-zero
// NonNegative timecode promotes it to Signed, and promotion is one-way:
// t.Neg().Neg() denotes the same instant as t but stays Signed.
func (t Timecode) Neg() Timecode {
	return t.derive(-t.frameNumber)
}

// ReflectedAdd computes n + t at t's rate.
func ReflectedAdd(n int64, t Timecode) Timecode {
	return t.AddFrames(n)
}

// ReflectedSub computes n - t at t's rate, i.e. -(t - n).
func ReflectedSub(n int64, t Timecode) Timecode {
	return t.derive(n - t.frameNumber)
}

// ReflectedMul computes n * t at t's rate.
func ReflectedMul(n int64, t Timecode) Timecode {
	return t.MulFrames(n)
}
