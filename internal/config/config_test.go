package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveWebSocketURL(t *testing.T) {
	tests := []struct {
		name     string
		apiURL   string
		expected string
	}{
		{"http with api suffix", "http://localhost:8000/api/v1", "ws://localhost:8000"},
		{"https with api suffix", "https://transcribe.example.com/api/v1", "wss://transcribe.example.com"},
		{"bare host", "http://localhost:8000/", "ws://localhost:8000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, deriveWebSocketURL(tt.apiURL))
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BACKEND_API_URL", "http://backend:8000/api/v1")
	t.Setenv("CHANNEL_BASE_DELAY", "250ms")
	t.Setenv("HISTORY_LIMIT", "not-a-number")

	cfg := Load()

	assert.Equal(t, "ws://backend:8000", cfg.Backend.WebSocketURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Channel.BaseDelay)
	assert.Equal(t, 50, cfg.Transcription.HistoryLimit)
	assert.Equal(t, int64(100*1024*1024), cfg.Transcription.MaxUploadBytes)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 5, cfg.Channel.MaxAttempts)
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("FLAG_ON", "true")
	t.Setenv("FLAG_BAD", "sometimes")

	assert.True(t, getEnvAsBool("FLAG_ON", false))
	assert.True(t, getEnvAsBool("FLAG_BAD", true))
	assert.False(t, getEnvAsBool("FLAG_UNSET", false))
}
