package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		setEnv       bool
		want         string
	}{
		{
			name:         "environment variable set",
			key:          "WALLET_TEST_KEY_1",
			defaultValue: "default",
			envValue:     "custom",
			setEnv:       true,
			want:         "custom",
		},
		{
			name:         "environment variable not set",
			key:          "WALLET_TEST_KEY_2",
			defaultValue: "default",
			setEnv:       false,
			want:         "default",
		},
		{
			name:         "empty environment variable",
			key:          "WALLET_TEST_KEY_3",
			defaultValue: "default",
			envValue:     "",
			setEnv:       true,
			want:         "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			}
			assert.Equal(t, tt.want, getEnvOrDefault(tt.key, tt.defaultValue))
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "AUTH_PROVIDER", "OTP_COUNTDOWN", "OTP_TTL", "SEND_CODE_RATE_PER_MINUTE"} {
		if v, ok := os.LookupEnv(key); ok {
			os.Unsetenv(key)
			defer os.Setenv(key, v)
		}
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, AuthProviderRedis, cfg.AuthProvider)
	assert.Equal(t, 60*time.Second, cfg.OTPCountdown)
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 30, cfg.SendCodeRatePerMin)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"invalid port", "PORT", "not-a-number"},
		{"invalid ttl", "OTP_TTL", "five minutes"},
		{"unknown provider", "AUTH_PROVIDER", "carrier-pigeon"},
		{"zero send rate", "SEND_CODE_RATE_PER_MINUTE", "0"},
		{"negative countdown", "OTP_COUNTDOWN", "-5s"},
		{"zero access token ttl", "ACCESS_TOKEN_TTL", "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_TwilioRequiresCredentials(t *testing.T) {
	t.Setenv("AUTH_PROVIDER", AuthProviderTwilio)
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "")
	t.Setenv("TWILIO_VERIFY_SERVICE_SID", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TWILIO_ACCOUNT_SID")
}

func TestLoadConfig_CooldownLongerThanCountdown(t *testing.T) {
	t.Setenv("AUTH_PROVIDER", AuthProviderRedis)
	t.Setenv("OTP_COUNTDOWN", "30s")
	t.Setenv("OTP_COOLDOWN", "60s")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTP_COOLDOWN")

	t.Setenv("OTP_COOLDOWN", "30s")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.OTPCooldown)
}

func TestLoadConfig_Production(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "codes would only be logged",
			env:     map[string]string{"TWILIO_ACCOUNT_SID": "", "TWILIO_AUTH_TOKEN": "", "TWILIO_FROM": "", "JWT_SECRET": secret},
			wantErr: "TWILIO_FROM",
		},
		{
			name:    "short signing key",
			env:     map[string]string{"TWILIO_ACCOUNT_SID": "AC1", "TWILIO_AUTH_TOKEN": "tok", "TWILIO_FROM": "+15005550006", "JWT_SECRET": "short"},
			wantErr: "JWT_SECRET",
		},
		{
			name: "complete",
			env:  map[string]string{"TWILIO_ACCOUNT_SID": "AC1", "TWILIO_AUTH_TOKEN": "tok", "TWILIO_FROM": "+15005550006", "JWT_SECRET": secret},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENVIRONMENT", "production")
			t.Setenv("AUTH_PROVIDER", AuthProviderRedis)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadConfig()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, cfg.IsProduction())
			assert.True(t, cfg.HasSMSSender())
		})
	}
}

func TestGetEnvAsBoolOrDefault(t *testing.T) {
	t.Setenv("WALLET_BOOL_TRUE", "true")
	t.Setenv("WALLET_BOOL_GARBAGE", "maybe")

	assert.True(t, getEnvAsBoolOrDefault("WALLET_BOOL_TRUE", false))
	assert.True(t, getEnvAsBoolOrDefault("WALLET_BOOL_GARBAGE", true))
	assert.False(t, getEnvAsBoolOrDefault("WALLET_BOOL_MISSING", false))
}

func TestMaskMongoURI(t *testing.T) {
	assert.Equal(t, "mongodb://****:****@db:27017", maskMongoURI("mongodb://user:pass@db:27017"))
	assert.Equal(t, "mongodb://localhost:27017", maskMongoURI("mongodb://localhost:27017"))
}
