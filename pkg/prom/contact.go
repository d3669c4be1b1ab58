package prom

const (
	ResultAccepted = "accepted"
	ResultInvalid  = "invalid"
	ResultError    = "error"
	ResultSent     = "sent"
	ResultRetry    = "retry"
	ResultDead     = "dead"

	DepthPending = "pending"
	DepthDead    = "dead"
)

func IncContactSubmission(result string) {
	IncCounterVec(SystemContact, MetricContactSubmissions, result)
}

func IncContactRateLimited() {
	IncCounter(SystemContact, MetricContactRateLimited)
}

func IncContactStatusUpdate(status string) {
	IncCounterVec(SystemContact, MetricContactStatusUpdates, status)
}

func ObserveHTTPRequest(method, code string, seconds float64) {
	AddHistogramVec(SystemHTTP, MetricHTTPRequestDuration, seconds, method, code)
}

func IncNotifierDelivery(result string) {
	IncCounterVec(SystemNotifier, MetricNotifierDeliveries, result)
}

func SetNotifierQueueDepth(kind string, n int64) {
	SetGaugeVec(SystemNotifier, MetricNotifierQueueDepth, float64(n), kind)
}
