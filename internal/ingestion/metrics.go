package ingestion

import "time"

// Metrics receives run and row counters. The HTTP middleware package provides
// the Prometheus implementation.
type Metrics interface {
	RecordImportRun(status string, d time.Duration)
	RecordImportRow(outcome string)
}

type noopMetrics struct{}

func (noopMetrics) RecordImportRun(string, time.Duration) {}
func (noopMetrics) RecordImportRow(string)                {}
