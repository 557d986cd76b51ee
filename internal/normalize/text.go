package normalize

import (
	"math"
	"strconv"
	"strings"
)

// jmxInternalPrefix marks the JMX exporter's self-instrumentation series
// (jmx_scrape_duration_seconds and friends). The exporter emits these both
// bare and in a quoted form, so both spellings are suppressed.
const jmxInternalPrefix = "jmx"

// parseText converts a text-exposition payload into records.
//
// Each surviving line splits at its last space: everything before it is the
// metric name — kept verbatim, label block and embedded spaces included —
// and everything after it is the value. Lines whose value does not coerce to
// a finite number are skipped with a diagnostic. Text mode does not
// deduplicate: names here are exporter-assigned, not derived identities.
func (e *Engine) parseText(payload []byte, ts int64, jmx bool) []Record {
	var records []Record

	for _, line := range strings.Split(string(payload), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" || line[0] == '#' {
			continue
		}
		if jmx && exporterInternalLine(line) {
			continue
		}

		cut := strings.LastIndexByte(line, ' ')
		if cut < 0 {
			e.log.Warn("normalize: skipping sample without value", "line", line)
			continue
		}
		metric, raw := line[:cut], line[cut+1:]

		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			e.log.Warn("normalize: skipping non-numeric sample",
				"metric", metric, "value", raw)
			continue
		}

		records = append(records, Record{
			Metric:   metric,
			Value:    value,
			Time:     ts,
			Category: CategoryEvent,
		})
	}

	return records
}

// exporterInternalLine reports whether line is a JMX exporter
// self-instrumentation sample, in bare or quoted form.
func exporterInternalLine(line string) bool {
	return strings.HasPrefix(line, jmxInternalPrefix) ||
		strings.HasPrefix(line, `"`+jmxInternalPrefix)
}
