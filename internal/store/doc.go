// Package store persists normalized record batches.
//
// The Store interface keeps the poll loop independent of the backend; the
// only implementation is a SQLite file via the pure-Go modernc.org driver.
// Save is transactional per batch, Query returns time-ordered slices, and
// Sweep implements retention by deleting records past the configured age.
package store
