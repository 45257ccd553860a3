package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "wallet_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"path", "method", "status"},
	)

	// OTPSends counts send-code attempts by outcome
	OTPSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_otp_sends_total",
			Help: "Number of verification code send attempts",
		},
		[]string{"status"},
	)

	// OTPVerifications counts code submissions by outcome
	OTPVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_otp_verifications_total",
			Help: "Number of verification code submissions",
		},
		[]string{"status"},
	)

	// CouponTransfers counts coupon transfers by outcome
	CouponTransfers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_coupon_transfers_total",
			Help: "Number of coupon transfers",
		},
		[]string{"status"},
	)

	// ActiveOTPSessions tracks live verification sessions
	ActiveOTPSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wallet_active_otp_sessions",
			Help: "Number of OTP sessions currently registered",
		},
	)

	// ActiveConnections tracks active connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wallet_active_connections",
			Help: "Number of active connections",
		},
	)
)
