package normalize

import (
	"fmt"
	"log/slog"
	"time"
)

// Mode selects how a raw poll payload is interpreted.
type Mode string

const (
	// ModeJMX is text exposition from a Kafka JMX exporter. The exporter's
	// self-instrumentation series (jmx_*) are suppressed.
	ModeJMX Mode = "jmx"

	// ModeText is plain text exposition with no exporter-specific filtering.
	ModeText Mode = "text"

	// ModeQuery is a decoded Prometheus query-API result array.
	ModeQuery Mode = "query"
)

// CategoryEvent is the category tag stamped on every record this engine
// produces. Reserved for future categorization.
const CategoryEvent = "Event"

// Record is one normalized time-series sample.
type Record struct {
	// Metric is the record identifier, unique within one batch.
	Metric string

	// Value is the sample value. Always finite — NaN and ±Inf inputs are
	// dropped during normalization, never emitted.
	Value float64

	// Time is the batch timestamp in milliseconds since epoch. Every record
	// from one Normalize call carries the same value.
	Time int64

	// Category is always CategoryEvent.
	Category string
}

// Engine converts raw poll payloads into normalized record batches.
//
// The engine holds no cross-batch state: the dedup set used in query mode is
// created and discarded per call, so a single Engine is safe to share across
// concurrent poll loops as long as each call receives its own payload.
type Engine struct {
	log *slog.Logger
}

// NewEngine returns an Engine that reports skipped-sample diagnostics to log.
// A nil log selects slog.Default().
func NewEngine(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{log: log}
}

// Normalize converts one raw payload into an ordered record batch.
//
// now is the batch timestamp; it is passed explicitly so callers (and tests)
// control the clock without sleeping. Production callers pass the poll tick
// time.
//
// Malformed samples never fail the call — they are skipped with best-effort
// diagnostics and the rest of the batch is kept. A non-nil error means the
// payload was unusable as a whole: query-mode input that does not decode as
// a result array, or a mode outside the recognized set.
func (e *Engine) Normalize(mode Mode, payload []byte, now time.Time) ([]Record, error) {
	ts := now.UnixMilli()

	switch mode {
	case ModeJMX:
		return e.parseText(payload, ts, true), nil
	case ModeText:
		return e.parseText(payload, ts, false), nil
	case ModeQuery:
		return e.parseQueryResult(payload, ts)
	default:
		return nil, fmt.Errorf("normalize: unsupported mode %q", mode)
	}
}
