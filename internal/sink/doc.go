// Package sink provides destinations for simulated log records: JSON lines on
// a writer or rotating file, a Redis list for a log shipper to drain, a
// fan-out, and an asynchronous buffer in front of any of them.
package sink
