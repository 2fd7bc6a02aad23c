package profile

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_Validate_Defaults(t *testing.T) {
	p := &Profile{
		Mode: "unexpected",
		Port: 8232,
		Data: t.TempDir(),
	}

	require.NoError(t, p.Validate())

	assert.Equal(t, "dev", p.Mode, "unknown mode falls back to dev")
	assert.Equal(t, 4, p.QATopK)
	assert.Equal(t, 30*time.Minute, p.SessionIdleTimeout)
	assert.Equal(t, 5*time.Minute, p.SessionCleanupInterval)
	assert.Equal(t, filepath.Join(p.Data, "concierge_dev.db"), p.DSN)
}

func TestProfile_Validate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
	}{
		{
			name:    "invalid port",
			profile: Profile{Mode: "dev", Port: -1},
		},
		{
			name:    "min score out of range",
			profile: Profile{Mode: "dev", Port: 8232, QAMinScore: 1.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.profile.Data = t.TempDir()
			assert.Error(t, tt.profile.Validate())
		})
	}
}

func TestProfile_IsLLMEnabled(t *testing.T) {
	p := &Profile{}
	assert.False(t, p.IsLLMEnabled())

	p.LLMAPIKey = "sk-test"
	assert.True(t, p.IsLLMEnabled())

	p = &Profile{LLMProvider: "ollama"}
	assert.True(t, p.IsLLMEnabled(), "ollama needs no API key")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CONCIERGE_PORT", "9090")
	t.Setenv("CONCIERGE_DATA", t.TempDir())

	p, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, p.Port)
}
