// Package api exposes timecode conversion, arithmetic, expression
// evaluation and stored marks over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/zsiec/stimecode/internal/config"
	apperrors "github.com/zsiec/stimecode/internal/errors"
	"github.com/zsiec/stimecode/internal/expr"
	"github.com/zsiec/stimecode/internal/logger"
	"github.com/zsiec/stimecode/internal/marks"
	"github.com/zsiec/stimecode/pkg/timecode"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

// Handlers serves the /api/v1 routes.
type Handlers struct {
	defaultRate  timecode.FrameRate
	forceNonDrop bool
	maxExprLen   int
	store        marks.Store
	errHandler   *apperrors.ErrorHandler
	logger       logger.Logger
}

// NewHandlers creates API handlers. The default frame rate is resolved from
// cfg once, so a bad configuration fails here rather than per request.
func NewHandlers(cfg *config.TimecodeConfig, store marks.Store, errHandler *apperrors.ErrorHandler, log logger.Logger) (*Handlers, error) {
	rate, err := cfg.FrameRate()
	if err != nil {
		return nil, fmt.Errorf("default frame rate: %w", err)
	}
	return &Handlers{
		defaultRate:  rate,
		forceNonDrop: cfg.ForceNonDropFrame,
		maxExprLen:   cfg.MaxExpressionLength,
		store:        store,
		errHandler:   errHandler,
		logger:       log.WithField("component", "api"),
	}, nil
}

// RegisterRoutes registers the API routes on router.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/framerates", h.HandleFrameRates).Methods("GET")

	api.HandleFunc("/timecodes/convert", h.HandleConvert).Methods("POST")
	api.HandleFunc("/timecodes/arithmetic", h.HandleArithmetic).Methods("POST")
	api.HandleFunc("/timecodes/compare", h.HandleCompare).Methods("POST")
	api.HandleFunc("/timecodes/evaluate", h.HandleEvaluate).Methods("POST")

	api.HandleFunc("/marks", h.HandleListMarks).Methods("GET")
	api.HandleFunc("/marks", h.HandleCreateMark).Methods("POST")
	api.HandleFunc("/marks/{id}", h.HandleGetMark).Methods("GET")
	api.HandleFunc("/marks/{id}", h.HandleUpdateMark).Methods("PATCH")
	api.HandleFunc("/marks/{id}", h.HandleDeleteMark).Methods("DELETE")
	api.HandleFunc("/marks/{id}/offset/{other}", h.HandleMarkOffset).Methods("GET")

	h.logger.Debug("API routes registered")
}

// rate resolves a request's frame rate label. An empty label selects the
// configured default.
func (h *Handlers) rate(label string, nonDrop bool) (timecode.FrameRate, error) {
	fr := h.defaultRate
	if label != "" {
		var err error
		if fr, err = timecode.ParseFrameRate(label); err != nil {
			return timecode.FrameRate{}, withFrameRate(err, label)
		}
	}
	if nonDrop || h.forceNonDrop {
		fr = fr.NonDrop()
	}
	return fr, nil
}

// operand turns one side of a request into a timecode.Operand.
func (h *Handlers) operand(req OperandRequest) (timecode.Operand, error) {
	set := 0
	for _, present := range []bool{req.Timecode != nil, req.FrameNumber != nil, req.Frames != nil, req.Scalar != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, apperrors.NewValidationError("operand needs exactly one of timecode, frame_number, frames or scalar")
	}

	switch {
	case req.Frames != nil:
		return timecode.Frames(*req.Frames), nil
	case req.Scalar != nil:
		return timecode.Scalar(*req.Scalar), nil
	}
	return h.timecode(req.FrameRate, req.NonDrop, req.Timecode, req.FrameNumber, req.NonNegative)
}

func (h *Handlers) timecode(label string, nonDrop bool, s *string, n *int64, nonNegative bool) (timecode.Timecode, error) {
	fr, err := h.rate(label, nonDrop)
	if err != nil {
		return timecode.Timecode{}, err
	}
	var tc timecode.Timecode
	switch {
	case s != nil && n != nil:
		return tc, apperrors.NewValidationError("timecode and frame_number are mutually exclusive")
	case s != nil:
		if tc, err = timecode.FromString(fr, *s); err != nil {
			return tc, withFrameRate(err, fr.Label())
		}
	case n != nil:
		tc = timecode.FromFrameNumber(fr, *n)
	default:
		return tc, apperrors.NewValidationError("timecode or frame_number is required")
	}
	if nonNegative {
		if tc, err = tc.AsVariant(timecode.NonNegative); err != nil {
			return tc, withFrameRate(err, fr.Label())
		}
	}
	return tc, nil
}

// withFrameRate classifies a timecode error and records the rate label the
// input was read at.
func withFrameRate(err error, label string) error {
	appErr, ok := apperrors.FromTimecodeError(err)
	if !ok {
		return err
	}
	return appErr.WithDetail(apperrors.DetailFrameRate, label)
}

// fail maps domain errors onto API errors and writes the response.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, expr.ErrSyntax):
		err = apperrors.Wrap(err, apperrors.ErrorTypeValidation, err.Error(), http.StatusBadRequest).WithCode("SYNTAX_ERROR")
	case errors.Is(err, marks.ErrMarkNotFound):
		err = apperrors.NewNotFoundError("mark")
	case errors.Is(err, marks.ErrMarkExists):
		err = apperrors.Wrap(err, apperrors.ErrorTypeValidation, err.Error(), http.StatusConflict)
	}
	h.errHandler.HandleError(w, r, err)
}

// failStore reports an error from the marks store. Rejected marks and
// missing or duplicate ids are client errors; anything else means the
// backend is unavailable.
func (h *Handlers) failStore(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, marks.ErrMarkNotFound) || errors.Is(err, marks.ErrMarkExists) || timecode.Kind(err) != "" {
		h.fail(w, r, err)
		return
	}
	logger.FromContext(r.Context()).WithError(err).Error("Marks store failure")
	h.errHandler.HandleError(w, r, apperrors.WrapServiceDownError(err, "marks"))
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeValidation, "invalid request body: "+err.Error(), http.StatusBadRequest)
	}
	return nil
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(ctx).WithError(err).Error("Failed to encode JSON response")
	}
}
