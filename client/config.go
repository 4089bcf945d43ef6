package client

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/freellmlabs/freellm-go/pkg/llm"
)

// Defaults used by DefaultConfig and applied to zero-valued fields at
// client construction.
const (
	DefaultBaseURL        = "https://apifreellm.com"
	DefaultTimeout        = 30 * time.Second
	DefaultMaxRetries     = 3
	DefaultRetryBaseDelay = 500 * time.Millisecond
	DefaultRetryMaxDelay  = 8 * time.Second
	DefaultTemperature    = 0.7
)

// Config is the client configuration. It is read once at construction
// and never mutated afterwards; there is no ambient global state.
//
// The zero value of MaxRetries disables retries. Use DefaultConfig or
// ConfigFromEnv to start from the standard defaults and override fields
// as needed.
type Config struct {
	// BaseURL of the FreeLLM API (e.g. "https://apifreellm.com")
	BaseURL string

	// Timeout for a single request attempt
	Timeout time.Duration

	// MaxRetries is the number of additional attempts after the first
	// for transient failures.
	MaxRetries int

	// RetryBaseDelay is the backoff before the first retry; it doubles
	// per attempt up to RetryMaxDelay.
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	// DefaultModel is used when a call does not override the model.
	// Empty omits the field from the request.
	DefaultModel string

	// DefaultTemperature is used when a call does not override the
	// temperature. Nil omits the field from the request.
	DefaultTemperature *float64

	// DefaultMaxTokens is used when a call does not override max tokens.
	// Nil omits the field from the request.
	DefaultMaxTokens *int

	// MaxHistory bounds the conversation history; the oldest turns are
	// evicted beyond this.
	MaxHistory int

	// Headers are added to every request in addition to Content-Type.
	Headers map[string]string
}

// DefaultConfig returns the standard configuration for apifreellm.com.
func DefaultConfig() Config {
	temp := DefaultTemperature
	return Config{
		BaseURL:            DefaultBaseURL,
		Timeout:            DefaultTimeout,
		MaxRetries:         DefaultMaxRetries,
		RetryBaseDelay:     DefaultRetryBaseDelay,
		RetryMaxDelay:      DefaultRetryMaxDelay,
		DefaultTemperature: &temp,
		MaxHistory:         llm.DefaultMaxHistory,
	}
}

// ConfigFromEnv builds a Config from FREELLM_* environment variables on
// top of DefaultConfig, loading a .env file first when one is present.
// Fields set explicitly by the caller afterwards take precedence by
// construction.
//
// Variables: FREELLM_BASE_URL, FREELLM_TIMEOUT (seconds),
// FREELLM_MAX_RETRIES, FREELLM_DEFAULT_MODEL, FREELLM_DEFAULT_TEMPERATURE,
// FREELLM_DEFAULT_MAX_TOKENS, FREELLM_MAX_HISTORY.
func ConfigFromEnv() Config {
	godotenv.Load()

	cfg := DefaultConfig()
	cfg.BaseURL = getEnvOrDefault("FREELLM_BASE_URL", cfg.BaseURL)
	cfg.DefaultModel = getEnvOrDefault("FREELLM_DEFAULT_MODEL", cfg.DefaultModel)
	if secs, ok := getEnvFloat("FREELLM_TIMEOUT"); ok {
		cfg.Timeout = time.Duration(secs * float64(time.Second))
	}
	if n, ok := getEnvInt("FREELLM_MAX_RETRIES"); ok {
		cfg.MaxRetries = n
	}
	if temp, ok := getEnvFloat("FREELLM_DEFAULT_TEMPERATURE"); ok {
		cfg.DefaultTemperature = &temp
	}
	if n, ok := getEnvInt("FREELLM_DEFAULT_MAX_TOKENS"); ok {
		cfg.DefaultMaxTokens = &n
	}
	if n, ok := getEnvInt("FREELLM_MAX_HISTORY"); ok {
		cfg.MaxHistory = n
	}
	return cfg
}

// withDefaults fills zero-valued connection fields. MaxRetries is left
// alone so an explicit zero keeps retries disabled.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RetryBaseDelay == 0 {
		c.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if c.RetryMaxDelay == 0 {
		c.RetryMaxDelay = DefaultRetryMaxDelay
	}
	if c.MaxHistory == 0 {
		c.MaxHistory = llm.DefaultMaxHistory
	}
	return c
}

// Validate checks the configuration for constraint violations.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return llm.NewValidationError(fmt.Sprintf("timeout must be positive, got %s", c.Timeout))
	}
	if c.MaxRetries < 0 {
		return llm.NewValidationError(fmt.Sprintf("max retries must be non-negative, got %d", c.MaxRetries))
	}
	if c.MaxHistory <= 0 {
		return llm.NewValidationError(fmt.Sprintf("max history must be positive, got %d", c.MaxHistory))
	}
	if c.DefaultTemperature != nil && (*c.DefaultTemperature < 0.0 || *c.DefaultTemperature > 2.0) {
		return llm.NewValidationError(fmt.Sprintf("default temperature %g out of range [0.0, 2.0]", *c.DefaultTemperature))
	}
	if c.DefaultMaxTokens != nil && *c.DefaultMaxTokens <= 0 {
		return llm.NewValidationError(fmt.Sprintf("default max tokens must be positive, got %d", *c.DefaultMaxTokens))
	}
	return nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvInt(key string) (int, bool) {
	val := os.Getenv(key)
	if val == "" {
		return 0, false
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return n, true
}

func getEnvFloat(key string) (float64, bool) {
	val := os.Getenv(key)
	if val == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
