// Package normalize converts raw metrics-exposition payloads into uniform
// record batches.
//
// Two payload families are supported: text exposition (a Kafka JMX exporter
// or any Prometheus-compatible /metrics endpoint) and decoded Prometheus
// query-API result arrays. One Normalize call is one batch: every record it
// returns carries the same timestamp, every value is finite, and metric
// identifiers are unique within the batch.
//
// Known limitation: in query mode, series that differ only in labels outside
// job/instance/__name__ collapse into the first-seen record. Folding them is
// deliberate — widening the identity with the remaining label set would push
// identifiers past the downstream store's length limit.
package normalize
