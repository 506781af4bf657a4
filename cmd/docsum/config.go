package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/docsum/api"
	"github.com/hazyhaar/docsum/docpipe"
	"github.com/hazyhaar/docsum/summarize"
)

// Config is the process configuration: an optional YAML file overridden
// by environment variables.
type Config struct {
	Addr string `yaml:"addr"`

	Provider      string        `yaml:"provider"`
	Model         string        `yaml:"model"`
	GeminiAPIKey  string        `yaml:"gemini_api_key"`
	GeminiBaseURL string        `yaml:"gemini_base_url"`
	GeminiVersion string        `yaml:"gemini_api_version"`
	OpenAIAPIKey  string        `yaml:"openai_api_key"`
	OpenAIBaseURL string        `yaml:"openai_base_url"`
	Timeout       time.Duration `yaml:"timeout"`

	MaxBodyBytes       int64   `yaml:"max_body_bytes"`
	PDFBackend         string  `yaml:"pdf_backend"`
	CORSOrigin         string  `yaml:"cors_origin"`
	RateLimitRPS       float64 `yaml:"rate_limit_rps"`
	RateLimitBurst     int     `yaml:"rate_limit_burst"`
	ExposeErrorDetails bool    `yaml:"expose_error_details"`

	MetricsDB            string `yaml:"metrics_db"`
	MetricsRetentionDays int    `yaml:"metrics_retention_days"`

	LogLevel string `yaml:"log_level"`
}

func defaultConfig() Config {
	return Config{
		Addr:                 ":8080",
		Provider:             string(summarize.ProviderGemini),
		Timeout:              60 * time.Second,
		MaxBodyBytes:         4 << 20,
		PDFBackend:           string(docpipe.BackendPDFCPU),
		CORSOrigin:           "*",
		RateLimitBurst:       10,
		MetricsRetentionDays: 30,
		LogLevel:             "info",
	}
}

// loadConfig reads path (if non-empty), applies environment overrides
// through getenv and validates the result.
func loadConfig(path string, getenv func(string) string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func firstEnv(getenv func(string) string, keys ...string) string {
	for _, k := range keys {
		if v := getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(dst *string, keys ...string) {
		if v := firstEnv(getenv, keys...); v != "" {
			*dst = v
		}
	}

	if port := getenv("PORT"); port != "" {
		c.Addr = ":" + port
	}
	str(&c.Provider, "LLM_PROVIDER")
	str(&c.Model, "LLM_MODEL")
	str(&c.GeminiAPIKey, "GEMINI_API_KEY", "AI_INTEGRATIONS_GEMINI_API_KEY")
	str(&c.GeminiBaseURL, "GEMINI_BASE_URL", "AI_INTEGRATIONS_GEMINI_BASE_URL")
	str(&c.GeminiVersion, "GEMINI_API_VERSION")
	str(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	str(&c.OpenAIBaseURL, "OPENAI_BASE_URL")
	str(&c.PDFBackend, "PDF_BACKEND")
	str(&c.CORSOrigin, "CORS_ORIGIN")
	str(&c.MetricsDB, "METRICS_DB")
	str(&c.LogLevel, "LOG_LEVEL")

	var err error
	parse := func(key string, fn func(string) error) {
		v := getenv(key)
		if v == "" || err != nil {
			return
		}
		if perr := fn(v); perr != nil {
			err = fmt.Errorf("config: %s=%q: %w", key, v, perr)
		}
	}
	parse("LLM_TIMEOUT", func(v string) (e error) { c.Timeout, e = time.ParseDuration(v); return })
	parse("MAX_BODY_BYTES", func(v string) (e error) { c.MaxBodyBytes, e = strconv.ParseInt(v, 10, 64); return })
	parse("RATE_LIMIT_RPS", func(v string) (e error) { c.RateLimitRPS, e = strconv.ParseFloat(v, 64); return })
	parse("RATE_LIMIT_BURST", func(v string) (e error) { c.RateLimitBurst, e = strconv.Atoi(v); return })
	parse("METRICS_RETENTION_DAYS", func(v string) (e error) { c.MetricsRetentionDays, e = strconv.Atoi(v); return })
	parse("EXPOSE_ERROR_DETAILS", func(v string) (e error) { c.ExposeErrorDetails, e = strconv.ParseBool(v); return })
	return err
}

func (c *Config) validate() error {
	switch summarize.Provider(c.Provider) {
	case summarize.ProviderGemini, summarize.ProviderOpenAI:
	default:
		return fmt.Errorf("config: provider must be gemini or openai, got %q", c.Provider)
	}
	switch docpipe.Backend(c.PDFBackend) {
	case docpipe.BackendPDFCPU, docpipe.BackendLedongthuc:
	default:
		return fmt.Errorf("config: pdf_backend must be pdfcpu or ledongthuc, got %q", c.PDFBackend)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: max_body_bytes must be positive")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("config: rate_limit_rps must be >= 0")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("config: unknown log_level %q", s)
}

func (c *Config) pipelineConfig(logger *slog.Logger) docpipe.Config {
	return docpipe.Config{
		Backend:     docpipe.Backend(c.PDFBackend),
		MaxFileSize: c.MaxBodyBytes,
		Logger:      logger,
	}
}

// summarizeConfig picks the credential and endpoint of the selected provider.
func (c *Config) summarizeConfig(logger *slog.Logger) summarize.Config {
	sc := summarize.Config{
		Provider: summarize.Provider(c.Provider),
		Model:    c.Model,
		Timeout:  c.Timeout,
		Logger:   logger,
	}
	switch sc.Provider {
	case summarize.ProviderOpenAI:
		sc.APIKey, sc.BaseURL = c.OpenAIAPIKey, c.OpenAIBaseURL
	default:
		sc.APIKey, sc.BaseURL, sc.APIVersion = c.GeminiAPIKey, c.GeminiBaseURL, c.GeminiVersion
	}
	return sc
}

func (c *Config) apiOptions() api.Options {
	return api.Options{
		ExposeDetails: c.ExposeErrorDetails,
		MaxBodyBytes:  c.MaxBodyBytes,
		CORSOrigin:    c.CORSOrigin,
		RatePerSecond: c.RateLimitRPS,
		Burst:         c.RateLimitBurst,
	}
}
