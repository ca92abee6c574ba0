package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/zsiec/stimecode/internal/logger"
	"github.com/zsiec/stimecode/pkg/timecode"
)

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Error   ErrorDetails `json:"error"`
	TraceID string       `json:"trace_id,omitempty"`
}

type ErrorDetails struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorHandler renders errors as ErrorResponse and logs them on the
// request-scoped logger, falling back to its own logger for requests that
// did not pass through the request logger middleware.
type ErrorHandler struct {
	logger *logrus.Logger
}

func NewErrorHandler(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Classify returns err as an AppError. Timecode errors become 400 or 422;
// anything unrecognized is an internal error.
func Classify(err error) *AppError {
	if appErr, ok := GetAppError(err); ok {
		return appErr
	}
	if appErr, ok := FromTimecodeError(err); ok {
		return appErr
	}
	return WrapInternalError(err, "An unexpected error occurred")
}

// HandleError writes err with the status its classification carries.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := Classify(err)
	traceID := requestID(r)

	h.logError(r, err, appErr)

	h.writeJSON(w, appErr.HTTPStatus, ErrorResponse{
		Error: ErrorDetails{
			Type:    appErr.Type,
			Message: appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		},
		TraceID: traceID,
	})
}

func (h *ErrorHandler) logError(r *http.Request, err error, appErr *AppError) {
	fields := logrus.Fields{
		"error_type": appErr.Type,
		"status":     appErr.HTTPStatus,
	}
	if appErr.Code != "" {
		fields["error_code"] = appErr.Code
	}
	if kind := timecode.Kind(err); kind != "" {
		fields["timecode_error"] = kind
	}
	if rate, ok := appErr.Details[DetailFrameRate]; ok {
		fields["frame_rate"] = rate
	}

	entry := h.entry(r).WithFields(fields)
	if appErr.Err != nil {
		entry = entry.WithError(appErr.Err)
	}
	entry.Log(levelFor(appErr.HTTPStatus), appErr.Message)
}

// levelFor keeps client mistakes out of the error stream.
func levelFor(status int) logrus.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return logrus.ErrorLevel
	case status >= http.StatusBadRequest:
		return logrus.WarnLevel
	}
	return logrus.InfoLevel
}

func (h *ErrorHandler) entry(r *http.Request) *logrus.Entry {
	if entry, ok := r.Context().Value(logger.LoggerKey).(*logrus.Entry); ok {
		return entry
	}
	return logger.WithRequest(h.logger, r)
}

func requestID(r *http.Request) string {
	if id := logger.GetRequestID(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}

func (h *ErrorHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.HandleError(w, r, NewNotFoundError("endpoint"))
}

func (h *ErrorHandler) HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.HandleError(w, r, New(ErrorTypeValidation, fmt.Sprintf("Method not allowed: %s", r.Method), http.StatusMethodNotAllowed))
}

// HandlePanic logs the recovered value with its stack and answers 500.
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	h.entry(r).WithFields(logrus.Fields{
		"panic": recovered,
		"stack": string(debug.Stack()),
	}).Error("Panic recovered in HTTP handler")

	h.HandleError(w, r, NewInternalError("An unexpected error occurred"))
}

func (h *ErrorHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WithError(err).Error("Failed to encode error response")
	}
}

// Middleware turns panics in next into a 500 response.
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				h.HandlePanic(w, r, recovered)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
