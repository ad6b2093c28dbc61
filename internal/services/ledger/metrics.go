package ledger

// MetricsCollector receives settlement outcomes. Implementations must be
// safe for concurrent use.
type MetricsCollector interface {
	RecordSettlement(direction, kind, status string, amount int64)
	RecordAuthorizationFailure(reason string)
	RecordError(operation, errType string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordSettlement(string, string, string, int64) {}
func (n *NoopMetricsCollector) RecordAuthorizationFailure(string)              {}
func (n *NoopMetricsCollector) RecordError(string, string)                     {}
