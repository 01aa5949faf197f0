package main

import (
	"errors"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tripbook"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	providerOpenAI = "openai"
	providerClaude = "claude"
	providerGemini = "gemini"
)

var seasons = []string{"spring", "summer", "fall", "winter"}

// Config is the configuration of the generate command. Values come from
// flags and environment variables, with an optional YAML file supplying
// defaults. Credentials are never read from the YAML file.
type Config struct {
	Season   string `yaml:"season"`
	Location string `yaml:"location"`
	Days     int    `yaml:"days"`
	People   int    `yaml:"people"`

	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`

	Template    string `yaml:"template"`
	Output      string `yaml:"output"`
	HTMLOutput  string `yaml:"html_output"`
	PageNumbers bool   `yaml:"page_numbers"`

	OpenAIAPIKey   string `yaml:"-"`
	OpenAIBaseURL  string `yaml:"openai_base_url"`
	ClaudeAPIKey   string `yaml:"-"`
	GeminiAPIKey   string `yaml:"-"`
	GeminiProject  string `yaml:"gemini_project"`
	GeminiLocation string `yaml:"gemini_location"`
	GCSCredentials string `yaml:"gcs_credentials"`

	TraceDir string `yaml:"trace_dir"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// fileKeys holds the top-level keys present in the YAML file.
	fileKeys map[string]bool
}

func (x *Config) hasFileKey(key string) bool {
	return x.fileKeys[key]
}

// Trip returns the trip parameters with the season title-cased.
func (x *Config) Trip() tripbook.TripParameters {
	return tripbook.TripParameters{
		Season:       titleCase(strings.TrimSpace(x.Season)),
		Location:     strings.TrimSpace(x.Location),
		DurationDays: x.Days,
		GroupSize:    x.People,
	}
}

// Validate checks the configuration before any model call is made.
func (x *Config) Validate() error {
	eb := goerr.NewBuilder(goerr.V("provider", x.Provider))

	season := strings.ToLower(strings.TrimSpace(x.Season))
	if season != "" && !slices.Contains(seasons, season) {
		return eb.Wrap(ErrInvalidConfig, "season must be one of spring, summer, fall, winter", goerr.V("season", x.Season))
	}
	if err := x.Trip().Validate(); err != nil {
		return eb.Wrap(ErrInvalidConfig, "invalid trip", goerr.V("cause", err.Error()))
	}

	switch x.Provider {
	case providerOpenAI:
		if x.OpenAIAPIKey == "" {
			return eb.Wrap(ErrInvalidConfig, "OpenAI API key is required")
		}
	case providerClaude:
		if x.ClaudeAPIKey == "" {
			return eb.Wrap(ErrInvalidConfig, "Anthropic API key is required")
		}
	case providerGemini:
		if x.GeminiAPIKey == "" && (x.GeminiProject == "" || x.GeminiLocation == "") {
			return eb.Wrap(ErrInvalidConfig, "Gemini API key or GCP project and location are required")
		}
	default:
		return eb.Wrap(ErrInvalidConfig, "unknown provider")
	}

	if x.Output == "" {
		return eb.Wrap(ErrInvalidConfig, "output is required")
	}
	if x.Timeout < 0 {
		return eb.Wrap(ErrInvalidConfig, "timeout must not be negative", goerr.V("timeout", x.Timeout))
	}

	if _, err := parseLogLevel(x.LogLevel); err != nil {
		return err
	}
	switch x.LogFormat {
	case "", "text", "json":
	default:
		return eb.Wrap(ErrInvalidConfig, "log format must be text or json", goerr.V("log_format", x.LogFormat))
	}

	return nil
}

// loadConfigFile reads a YAML configuration file.
func loadConfigFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse config file",
			goerr.V("path", path), goerr.V("cause", err.Error()))
	}

	var keys map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &keys); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse config file",
			goerr.V("path", path), goerr.V("cause", err.Error()))
	}
	cfg.fileKeys = make(map[string]bool, len(keys))
	for key := range keys {
		cfg.fileKeys[key] = true
	}

	return &cfg, nil
}

// loadEnvFile loads variables from a dotenv file. Variables that are
// already set in the environment win.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return goerr.Wrap(err, "failed to load env file", goerr.V("path", path))
	}
	return nil
}

// fillCredentialsFromEnv sets empty credentials from the standard provider
// environment variables, which may have been loaded from an env file after
// the flags were parsed.
func (x *Config) fillCredentialsFromEnv() {
	setIfEmpty(&x.OpenAIAPIKey, "TRIPBOOK_OPENAI_API_KEY", "OPENAI_API_KEY")
	setIfEmpty(&x.ClaudeAPIKey, "TRIPBOOK_CLAUDE_API_KEY", "ANTHROPIC_API_KEY")
	setIfEmpty(&x.GeminiAPIKey, "TRIPBOOK_GEMINI_API_KEY", "GEMINI_API_KEY")
	setIfEmpty(&x.GeminiProject, "TRIPBOOK_GEMINI_PROJECT")
	setIfEmpty(&x.GeminiLocation, "TRIPBOOK_GEMINI_LOCATION")
}

func setIfEmpty(dst *string, envVars ...string) {
	if *dst != "" {
		return
	}
	for _, key := range envVars {
		if v := os.Getenv(key); v != "" {
			*dst = v
			return
		}
	}
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, goerr.Wrap(ErrInvalidConfig, "unknown log level", goerr.V("log_level", level))
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
