package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zsiec/stimecode/pkg/timecode"
)

var (
	// Codec metrics
	conversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timecode_conversions_total",
		Help: "Timecode conversions by frame rate and direction",
	}, []string{"frame_rate", "direction"})

	conversionErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timecode_conversion_errors_total",
		Help: "Failed timecode conversions by error kind",
	}, []string{"frame_rate", "kind"})

	// Arithmetic metrics
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timecode_operations_total",
		Help: "Arithmetic operations by operator and outcome",
	}, []string{"op", "result"})

	mixedRateOperationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timecode_mixed_rate_operations_total",
		Help: "Arithmetic operations whose operands carried different frame rates",
	})

	negativeResultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timecode_negative_results_total",
		Help: "Results that came out negative",
	})

	// Expression metrics
	evaluationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timecode_expression_duration_seconds",
		Help:    "Expression parse and evaluation time",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8), // 10µs to ~160ms
	}, []string{"result"})

	// Mark store metrics
	marksStored = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "timecode_marks_stored",
		Help: "Number of marks known to this instance",
	})

	markOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timecode_mark_operations_total",
		Help: "Mark store calls by operation and outcome",
	}, []string{"op", "result"})
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordConversion counts one decode or encode at the given rate label.
func RecordConversion(rate, direction string, err error) {
	if err != nil {
		kind := timecode.Kind(err)
		if kind == "" {
			kind = "UNKNOWN"
		}
		conversionErrorsTotal.WithLabelValues(rate, kind).Inc()
		return
	}
	conversionsTotal.WithLabelValues(rate, direction).Inc()
}

// RecordOperation counts an arithmetic result. Pass the operands' rates so
// cross-rate arithmetic can be tracked.
func RecordOperation(op timecode.Op, result timecode.Timecode, err error, rates ...timecode.FrameRate) {
	operationsTotal.WithLabelValues(op.String(), outcome(err)).Inc()
	if err != nil {
		return
	}

	if result.Sign() < 0 {
		negativeResultsTotal.Inc()
	}

	for i := 1; i < len(rates); i++ {
		if !rates[i].Equal(rates[0]) {
			mixedRateOperationsTotal.Inc()
			return
		}
	}
}

func ObserveEvaluation(start time.Time, err error) {
	evaluationDuration.WithLabelValues(outcome(err)).Observe(time.Since(start).Seconds())
}

func SetMarksStored(count int) {
	marksStored.Set(float64(count))
}

func RecordMarkOperation(op string, err error) {
	markOperationsTotal.WithLabelValues(op, outcome(err)).Inc()
}
