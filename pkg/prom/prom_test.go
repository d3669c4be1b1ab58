package prom

import (
	"strings"
	"testing"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func init() {
	logger.NewNop()
}

func TestCreateAndExpose(t *testing.T) {
	require.NoError(t, Create("test-host", "test", "portfolio"))
	// second call must not fail on duplicate registration
	require.NoError(t, Create("test-host", "test", "portfolio"))

	IncContactSubmission(ResultAccepted)
	IncContactSubmission(ResultAccepted)
	IncContactRateLimited()
	IncContactStatusUpdate("read")
	ObserveHTTPRequest("POST", "201", 0.01)
	IncNotifierDelivery(ResultSent)
	SetNotifierQueueDepth(DepthPending, 7)
	SetNotifierQueueDepth(DepthPending, 3)

	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/metrics")
	Handler()(&ctx)

	body := string(ctx.Response.Body())
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, body, `portfolio_contact_submissions_total{env="test",instance="test-host",result="accepted"} 2`)
	assert.Contains(t, body, "portfolio_contact_rate_limited_total")
	assert.Contains(t, body, "portfolio_http_request_duration_seconds_bucket")
	assert.True(t, strings.Contains(body, `status="read"`))
	assert.Contains(t, body, `portfolio_notifier_queue_depth{env="test",instance="test-host",kind="pending"} 3`)
}

func TestCreateMetric_UnknownType(t *testing.T) {
	assert.Error(t, CreateMetric("summary", "x", "y", "help"))
}
