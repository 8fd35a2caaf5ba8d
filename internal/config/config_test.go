package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Database.Driver)
	assert.Equal(t, 5*time.Second, cfg.Database.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Polling.Interval)
	assert.Equal(t, 3, cfg.Polling.FailureThreshold)
	assert.Equal(t, 10*time.Second, cfg.Polling.LocationMinInterval)
	assert.Equal(t, "simulated", cfg.Payment.Provider)
	assert.Equal(t, "local", cfg.Storage.Provider)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("STORE_TIMEOUT", "750ms")
	t.Setenv("POLL_INTERVAL", "5s")
	t.Setenv("PLATFORM_FEE_AMOUNT", "25.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.Database.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Polling.Interval)
	assert.Equal(t, 25.5, cfg.Payment.PlatformFee)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.CORSAllowedOrigins)
}

func TestValidate(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "unknown driver", env: map[string]string{"STORE_DRIVER": "postgres"}, wantErr: "unknown STORE_DRIVER"},
		{name: "firestore without project", env: map[string]string{"STORE_DRIVER": "firestore"}, wantErr: "FIRESTORE_PROJECT_ID"},
		{name: "negative fee", env: map[string]string{"STORE_DRIVER": "memory", "PLATFORM_FEE_AMOUNT": "-1"}, wantErr: "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
