// Package profile holds the runtime configuration for the concierge server.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev".
	Mode string
	// Addr is the binding address for the server.
	Addr string
	// Port is the binding port for the server.
	Port int
	// Data is the data directory (appointment database lives here).
	Data string
	// DSN points to the appointment database. Derived from Data when empty.
	DSN string
	// Version is the current version of the server.
	Version string

	// LLM configuration (classification + generation backend).
	LLMProvider string // openai, deepseek, or any OpenAI-compatible endpoint
	LLMAPIKey   string
	LLMBaseURL  string
	LLMModel    string

	// QA configuration.
	QATopK           int     // passages per retrieval, default 4
	QAMinScore       float32 // similarity threshold below which QA answers "not found"
	RetrievalBaseURL string  // document search service; empty disables retrieval

	// Timezone is the default zone for interpreting appointment datetimes.
	Timezone string

	// Session lifecycle.
	SessionIdleTimeout     time.Duration // idle sessions are evicted after this
	SessionCleanupInterval time.Duration // how often the eviction job runs
}

// Load reads configuration from an optional config file and CONCIERGE_* env vars.
func Load() (*Profile, error) {
	v := viper.New()
	v.SetConfigName("concierge")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.concierge")
	v.SetEnvPrefix("concierge")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", "dev")
	v.SetDefault("addr", "")
	v.SetDefault("port", 8232)
	v.SetDefault("data", "./data")
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("qa.top_k", 4)
	v.SetDefault("qa.min_score", 0.35)
	v.SetDefault("timezone", "Local")
	v.SetDefault("session.idle_timeout", "30m")
	v.SetDefault("session.cleanup_interval", "5m")

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine; env vars and defaults carry the rest.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "read config")
		}
	}

	p := &Profile{
		Mode:                   v.GetString("mode"),
		Addr:                   v.GetString("addr"),
		Port:                   v.GetInt("port"),
		Data:                   v.GetString("data"),
		DSN:                    v.GetString("dsn"),
		LLMProvider:            v.GetString("llm.provider"),
		LLMAPIKey:              v.GetString("llm.api_key"),
		LLMBaseURL:             v.GetString("llm.base_url"),
		LLMModel:               v.GetString("llm.model"),
		QATopK:                 v.GetInt("qa.top_k"),
		QAMinScore:             float32(v.GetFloat64("qa.min_score")),
		RetrievalBaseURL:       v.GetString("retrieval.base_url"),
		Timezone:               v.GetString("timezone"),
		SessionIdleTimeout:     v.GetDuration("session.idle_timeout"),
		SessionCleanupInterval: v.GetDuration("session.cleanup_interval"),
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// IsDev returns true unless the profile runs in prod mode.
func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsLLMEnabled returns true if an LLM backend is configured.
func (p *Profile) IsLLMEnabled() bool {
	return p.LLMAPIKey != "" || p.LLMProvider == "ollama"
}

// Validate normalizes and validates the profile.
func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}
	if p.Port <= 0 || p.Port > 65535 {
		return errors.Errorf("invalid port: %d", p.Port)
	}
	if p.QATopK <= 0 {
		p.QATopK = 4
	}
	if p.QAMinScore < 0 || p.QAMinScore > 1 {
		return errors.Errorf("qa.min_score must be within [0,1], got %v", p.QAMinScore)
	}
	if p.SessionIdleTimeout <= 0 {
		p.SessionIdleTimeout = 30 * time.Minute
	}
	if p.SessionCleanupInterval <= 0 {
		p.SessionCleanupInterval = 5 * time.Minute
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	if p.DSN == "" {
		p.DSN = filepath.Join(p.Data, fmt.Sprintf("concierge_%s.db", p.Mode))
	}
	return nil
}

func checkDataDir(dataDir string) (string, error) {
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	dataDir = strings.TrimRight(dataDir, "\\/")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "unable to create data folder %s", dataDir)
	}
	return dataDir, nil
}
