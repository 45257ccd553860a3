package observability

import (
	"strings"

	"github.com/mychangex/app-wallet/internal/logging"
)

// Logger returns the global safe logger instance
func Logger() *logging.SafeLogger {
	return logging.Logger
}

// MaskPhone masks a phone number for logging, keeping the country prefix and the last 4 digits
func MaskPhone(phone string) string {
	if len(phone) < 8 {
		return "********"
	}
	prefix := ""
	if strings.HasPrefix(phone, "+263") {
		prefix = "+263"
	}
	hidden := len(phone) - len(prefix) - 4
	return prefix + strings.Repeat("*", hidden) + phone[len(phone)-4:]
}

// MaskSensitiveData masks sensitive values in a map before logging it
func MaskSensitiveData(data map[string]string) map[string]string {
	sensitiveFields := []string{"pin", "pin_hash", "code", "registration_token"}
	masked := make(map[string]string, len(data))

	for k, v := range data {
		if contains(sensitiveFields, k) {
			masked[k] = "********"
		} else {
			masked[k] = v
		}
	}

	return masked
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
