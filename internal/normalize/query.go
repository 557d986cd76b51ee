package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// queryEntry is one element of a Prometheus query-API result array.
type queryEntry struct {
	Metric map[string]string `json:"metric"`
	Value  json.RawMessage   `json:"value"`
}

// parseQueryResult converts a decoded query-API result array into records.
//
// Each entry's identity is job + "/" + instance + "/" + __name__. Entries
// without a job label are skipped, as are entries whose value is NaN (numeric
// or the "NaN" string literal) or otherwise non-finite. When two entries
// collide on the derived identity the first wins; see the package doc for why
// the remaining labels are not part of the identity.
func (e *Engine) parseQueryResult(payload []byte, ts int64) ([]Record, error) {
	var entries []queryEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("normalize: decode query result: %w", err)
	}

	seen := make(map[string]struct{}, len(entries))
	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		job, ok := entry.Metric["job"]
		if !ok {
			e.log.Debug("normalize: skipping entry without job label")
			continue
		}
		metric := job + "/" + entry.Metric["instance"] + "/" + entry.Metric["__name__"]
		if _, dup := seen[metric]; dup {
			continue
		}

		value, ok := sampleValue(entry.Value)
		if !ok {
			continue
		}

		seen[metric] = struct{}{}
		records = append(records, Record{
			Metric:   metric,
			Value:    value,
			Time:     ts,
			Category: CategoryEvent,
		})
	}

	return records, nil
}

// sampleValue extracts a finite float from a query-API value field, which is
// either a scalar or a [timestamp, value] pair. The pair form carries the
// sample value in its second element.
func sampleValue(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}

	if raw[0] == '[' {
		var pair []json.RawMessage
		if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
			return 0, false
		}
		raw = bytes.TrimSpace(pair[1])
		if len(raw) == 0 {
			return 0, false
		}
	}

	// The query API reports sample values as strings ("3.14"); scalars from
	// other producers arrive as bare numbers. Accept both.
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		return finite(strconv.ParseFloat(s, 64))
	}

	if raw[0] != '-' && (raw[0] < '0' || raw[0] > '9') {
		// null, booleans, nested objects — not sample values.
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return finite(v, nil)
}

// finite filters parse results down to usable sample values.
func finite(v float64, err error) (float64, bool) {
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
