package expr

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/zsiec/stimecode/internal/metrics"
	"github.com/zsiec/stimecode/pkg/timecode"
)

// Value is the result of evaluating an expression: either a timecode or a
// plain number when no timecode took part.
type Value struct {
	tc     timecode.Timecode
	num    float64
	isTime bool
}

func TimecodeValue(tc timecode.Timecode) Value { return Value{tc: tc, isTime: true} }
func NumberValue(f float64) Value              { return Value{num: f} }

func (v Value) IsTimecode() bool { return v.isTime }

// Timecode returns the timecode result; ok is false for numbers.
func (v Value) Timecode() (timecode.Timecode, bool) { return v.tc, v.isTime }

func (v Value) Number() float64 { return v.num }

func (v Value) String() string {
	if v.isTime {
		return v.tc.String()
	}
	return strconv.FormatFloat(v.num, 'f', -1, 64)
}

// operand converts a number to Frames when it is whole, Scalar otherwise.
func (v Value) operand() timecode.Operand {
	if v.isTime {
		return v.tc
	}
	if v.num == math.Trunc(v.num) && math.Abs(v.num) < 1<<53 {
		return timecode.Frames(int64(v.num))
	}
	return timecode.Scalar(v.num)
}

// Evaluator evaluates timecode expressions. Untagged timecode literals are
// read at DefaultRate; literals may carry their own rate with "@label".
type Evaluator struct {
	defaultRate  timecode.FrameRate
	forceNonDrop bool
	maxLength    int
}

type Option func(*Evaluator)

// WithNonDrop reads every literal without drop-frame counting.
func WithNonDrop() Option {
	return func(e *Evaluator) { e.forceNonDrop = true }
}

// WithMaxLength rejects inputs longer than n bytes.
func WithMaxLength(n int) Option {
	return func(e *Evaluator) { e.maxLength = n }
}

func New(defaultRate timecode.FrameRate, opts ...Option) *Evaluator {
	e := &Evaluator{defaultRate: defaultRate}
	for _, opt := range opts {
		opt(e)
	}
	if e.forceNonDrop {
		e.defaultRate = e.defaultRate.NonDrop()
	}
	return e
}

func (e *Evaluator) DefaultRate() timecode.FrameRate { return e.defaultRate }

// Evaluate parses and evaluates input. Operator precedence is the usual
// one; every timecode operation follows timecode.Apply, so the left
// operand's rate wins.
func (e *Evaluator) Evaluate(input string) (v Value, err error) {
	start := time.Now()
	defer func() { metrics.ObserveEvaluation(start, err) }()

	if e.maxLength > 0 && len(input) > e.maxLength {
		return Value{}, fmt.Errorf("%w: expression longer than %d bytes", ErrSyntax, e.maxLength)
	}

	tree, err := parse(input)
	if err != nil {
		return Value{}, err
	}
	return e.eval(tree)
}

func (e *Evaluator) eval(n node) (Value, error) {
	switch n := n.(type) {
	case *timecodeNode:
		fr := e.defaultRate
		if n.rate != "" {
			var err error
			if fr, err = timecode.ParseFrameRate(n.rate); err != nil {
				return Value{}, err
			}
			if e.forceNonDrop {
				fr = fr.NonDrop()
			}
		}
		tc, err := timecode.FromString(fr, n.text)
		if err != nil {
			return Value{}, err
		}
		return TimecodeValue(tc), nil

	case *numberNode:
		return NumberValue(n.value), nil

	case *negNode:
		x, err := e.eval(n.x)
		if err != nil {
			return Value{}, err
		}
		if x.isTime {
			return TimecodeValue(x.tc.Neg()), nil
		}
		return NumberValue(-x.num), nil

	case *binaryNode:
		l, err := e.eval(n.l)
		if err != nil {
			return Value{}, err
		}
		r, err := e.eval(n.r)
		if err != nil {
			return Value{}, err
		}
		return e.combine(n.op, l, r)
	}
	return Value{}, fmt.Errorf("%w: unknown node %T", ErrSyntax, n)
}

func (e *Evaluator) combine(op timecode.Op, l, r Value) (Value, error) {
	if !l.isTime && !r.isTime {
		return numeric(op, l.num, r.num)
	}

	tc, err := timecode.Apply(op, l.operand(), r.operand())

	var rates []timecode.FrameRate
	for _, v := range []Value{l, r} {
		if v.isTime {
			rates = append(rates, v.tc.FrameRate())
		}
	}
	metrics.RecordOperation(op, tc, err, rates...)

	if err != nil {
		return Value{}, err
	}
	return TimecodeValue(tc), nil
}

func numeric(op timecode.Op, a, b float64) (Value, error) {
	switch op {
	case timecode.OpAdd:
		return NumberValue(a + b), nil
	case timecode.OpSub:
		return NumberValue(a - b), nil
	case timecode.OpMul:
		return NumberValue(a * b), nil
	case timecode.OpDiv:
		if b == 0 {
			return Value{}, fmt.Errorf("%w: %v / 0", timecode.ErrDivisionByZero, a)
		}
		return NumberValue(a / b), nil
	}
	return Value{}, fmt.Errorf("%w: %s", timecode.ErrUnsupportedOperation, op)
}
