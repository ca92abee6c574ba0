package api

import (
	"net/http"
	"strings"

	apperrors "github.com/zsiec/stimecode/internal/errors"
	"github.com/zsiec/stimecode/internal/expr"
	"github.com/zsiec/stimecode/internal/logger"
	"github.com/zsiec/stimecode/internal/metrics"
	"github.com/zsiec/stimecode/pkg/timecode"
)

// HandleFrameRates lists every supported frame rate.
func (h *Handlers) HandleFrameRates(w http.ResponseWriter, r *http.Request) {
	labels := timecode.Labels()
	resp := FrameRateListResponse{
		FrameRates: make([]FrameRateResponse, 0, len(labels)),
		Default:    h.defaultRate.Label(),
	}
	for _, label := range labels {
		fr := timecode.MustParseFrameRate(label)
		resp.FrameRates = append(resp.FrameRates, FrameRateResponse{
			Label:            fr.Label(),
			Rational:         fr.Rate().String(),
			FPS:              fr.Rate().Float64(),
			RoundedFPS:       fr.RoundedFPS(),
			DropFrame:        fr.IsDropFrame(),
			DroppedPerMinute: fr.DroppedPerMinute(),
		})
	}
	writeJSON(r.Context(), w, http.StatusOK, resp)
}

// HandleConvert converts between a timecode string, a frame number and
// elapsed seconds at one frame rate.
func (h *Handlers) HandleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	fr, err := h.rate(req.FrameRate, req.NonDrop)
	if err != nil {
		metrics.RecordConversion(req.FrameRate, "parse", err)
		h.fail(w, r, err)
		return
	}

	var (
		tc        timecode.Timecode
		direction string
	)
	switch {
	case req.Timecode != nil && req.FrameNumber == nil && req.Seconds == nil:
		direction = "decode"
		tc, err = timecode.FromString(fr, *req.Timecode)
	case req.FrameNumber != nil && req.Timecode == nil && req.Seconds == nil:
		direction = "encode"
		tc = timecode.FromFrameNumber(fr, *req.FrameNumber)
	case req.Seconds != nil && req.Timecode == nil && req.FrameNumber == nil:
		direction = "seconds"
		tc = timecode.FromSeconds(fr, *req.Seconds)
	default:
		h.fail(w, r, apperrors.NewValidationError("exactly one of timecode, frame_number or seconds is required"))
		return
	}
	metrics.RecordConversion(fr.Label(), direction, err)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	logger.WithFrameRate(logger.FromContext(r.Context()), fr.Label()).
		WithField("direction", direction).Debug("Converted timecode")
	writeJSON(r.Context(), w, http.StatusOK, newTimecodeResponse(tc))
}

// HandleArithmetic applies one operator to two operands. The left operand
// must be a timecode unless the operator is reflected over a frame count.
func (h *Handlers) HandleArithmetic(w http.ResponseWriter, r *http.Request) {
	var req ArithmeticRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	op, err := timecode.ParseOp(strings.TrimSpace(req.Op))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	left, err := h.operand(req.Left)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	right, err := h.operand(req.Right)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := timecode.Apply(op, left, right)
	metrics.RecordOperation(op, result, err, ratesOf(left, right)...)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, ArithmeticResponse{
		Op:     op.String(),
		Result: newTimecodeResponse(result),
	})
}

// HandleCompare orders two timecodes by elapsed real time.
func (h *Handlers) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	left, err := h.timecode(req.Left.FrameRate, req.Left.NonDrop, req.Left.Timecode, req.Left.FrameNumber, req.Left.NonNegative)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	right, err := h.timecode(req.Right.FrameRate, req.Right.NonDrop, req.Right.Timecode, req.Right.FrameNumber, req.Right.NonNegative)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	cmp := left.Compare(right)
	writeJSON(r.Context(), w, http.StatusOK, CompareResponse{
		Result:       cmp,
		Equal:        cmp == 0,
		LeftSeconds:  left.Seconds(),
		RightSeconds: right.Seconds(),
	})
}

// HandleEvaluate evaluates a timecode expression such as
// "01:00:00;00 + 00:00:10;00 * 2".
func (h *Handlers) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.Expression) == "" {
		h.fail(w, r, apperrors.NewValidationError("expression is required"))
		return
	}

	fr, err := h.rate(req.FrameRate, req.NonDrop)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	opts := []expr.Option{expr.WithMaxLength(h.maxExprLen)}
	if req.NonDrop || h.forceNonDrop {
		opts = append(opts, expr.WithNonDrop())
	}

	v, err := expr.New(fr, opts...).Evaluate(req.Expression)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := EvaluateResponse{Expression: req.Expression, Result: v.String()}
	if tc, ok := v.Timecode(); ok {
		tr := newTimecodeResponse(tc)
		resp.Timecode = &tr
	} else {
		n := v.Number()
		resp.Number = &n
	}
	writeJSON(r.Context(), w, http.StatusOK, resp)
}

func ratesOf(operands ...timecode.Operand) []timecode.FrameRate {
	var rates []timecode.FrameRate
	for _, o := range operands {
		if tc, ok := o.(timecode.Timecode); ok {
			rates = append(rates, tc.FrameRate())
		}
	}
	return rates
}
