package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsExist(t *testing.T) {
	assert.NotNil(t, RequestDuration)
	assert.NotNil(t, OTPSends)
	assert.NotNil(t, OTPVerifications)
	assert.NotNil(t, CouponTransfers)
	assert.NotNil(t, ActiveOTPSessions)
	assert.NotNil(t, ActiveConnections)
}

func TestOTPSendsCounter(t *testing.T) {
	before := testutil.ToFloat64(OTPSends.WithLabelValues("success"))
	OTPSends.WithLabelValues("success").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(OTPSends.WithLabelValues("success")))
}

func TestActiveOTPSessionsGauge(t *testing.T) {
	ActiveOTPSessions.Set(0)
	ActiveOTPSessions.Inc()
	ActiveOTPSessions.Inc()
	ActiveOTPSessions.Dec()
	assert.Equal(t, float64(1), testutil.ToFloat64(ActiveOTPSessions))
}
