package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	logger := Logger()
	require.NotNil(t, logger)

	// Should be safe to use
	logger.Info("test message")
}

func TestMaskPhone(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		expected string
	}{
		{"canonical number", "+263784739341", "+263*****9341"},
		{"local number", "0784739341", "******9341"},
		{"too short", "12345", "********"},
		{"empty", "", "********"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaskPhone(tt.phone))
		})
	}
}

func TestMaskSensitiveData(t *testing.T) {
	data := map[string]string{
		"full_name": "Tendai Moyo",
		"pin_hash":  "$2a$10$abc",
		"phone":     "+263784739341",
	}

	masked := MaskSensitiveData(data)

	assert.Equal(t, "Tendai Moyo", masked["full_name"])
	assert.Equal(t, "********", masked["pin_hash"])
	assert.Equal(t, "+263784739341", masked["phone"])
	assert.Equal(t, "$2a$10$abc", data["pin_hash"], "input must not be modified")
}
