package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tripbook"
	"github.com/m-mizutani/tripbook/llm/claude"
	"github.com/m-mizutani/tripbook/llm/gemini"
	"github.com/m-mizutani/tripbook/llm/openai"
	"github.com/m-mizutani/tripbook/output"
	"github.com/m-mizutani/tripbook/pdf"
	"github.com/m-mizutani/tripbook/render"
	"github.com/m-mizutani/tripbook/trace"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

const (
	defaultOutput  = "Trip_handbook.pdf"
	defaultTimeout = 3 * time.Minute
)

// generatorFactory creates the Generator for a validated configuration.
type generatorFactory func(ctx context.Context, cfg *Config) (tripbook.Generator, error)

type generateConfig struct {
	newGenerator generatorFactory
}

type generateOption func(*generateConfig)

func withGeneratorFactory(f generatorFactory) generateOption {
	return func(c *generateConfig) {
		c.newGenerator = f
	}
}

func generateCommand(opts ...generateOption) *cli.Command {
	gc := &generateConfig{newGenerator: newGenerator}
	for _, opt := range opts {
		opt(gc)
	}

	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a survival handbook PDF for a trip",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Sources: cli.EnvVars("TRIPBOOK_CONFIG"),
				Usage:   "YAML config file supplying defaults for the flags below",
			},
			&cli.StringFlag{
				Name:    "env-file",
				Sources: cli.EnvVars("TRIPBOOK_ENV_FILE"),
				Usage:   "dotenv file to load credentials from",
			},

			&cli.StringFlag{
				Name:    "season",
				Aliases: []string{"s"},
				Sources: cli.EnvVars("TRIPBOOK_SEASON"),
				Usage:   "Season of the trip (spring, summer, fall, winter)",
			},
			&cli.StringFlag{
				Name:    "location",
				Aliases: []string{"l"},
				Sources: cli.EnvVars("TRIPBOOK_LOCATION"),
				Usage:   "Destination of the trip",
			},
			&cli.IntFlag{
				Name:    "days",
				Aliases: []string{"d"},
				Sources: cli.EnvVars("TRIPBOOK_DAYS"),
				Usage:   "Duration of the trip in days",
			},
			&cli.IntFlag{
				Name:    "people",
				Aliases: []string{"p"},
				Sources: cli.EnvVars("TRIPBOOK_PEOPLE"),
				Usage:   "Number of people in the group",
			},

			&cli.StringFlag{
				Name:    "provider",
				Value:   providerOpenAI,
				Sources: cli.EnvVars("TRIPBOOK_PROVIDER"),
				Usage:   "LLM provider (openai, claude, gemini)",
			},
			&cli.StringFlag{
				Name:    "model",
				Sources: cli.EnvVars("TRIPBOOK_MODEL"),
				Usage:   "Model name, provider default if empty",
			},
			&cli.FloatFlag{
				Name:    "temperature",
				Value:   0.7,
				Sources: cli.EnvVars("TRIPBOOK_TEMPERATURE"),
				Usage:   "Sampling temperature",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Value:   defaultTimeout,
				Sources: cli.EnvVars("TRIPBOOK_TIMEOUT"),
				Usage:   "Timeout of the whole generation",
			},

			&cli.StringFlag{
				Name:    "template",
				Sources: cli.EnvVars("TRIPBOOK_TEMPLATE"),
				Usage:   "HTML template file, built-in template if empty",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   defaultOutput,
				Sources: cli.EnvVars("TRIPBOOK_OUTPUT"),
				Usage:   "PDF output path or gs://bucket/object",
			},
			&cli.StringFlag{
				Name:    "html-output",
				Sources: cli.EnvVars("TRIPBOOK_HTML_OUTPUT"),
				Usage:   "Also write the rendered HTML to this path or gs://bucket/object",
			},
			&cli.BoolFlag{
				Name:    "page-numbers",
				Sources: cli.EnvVars("TRIPBOOK_PAGE_NUMBERS"),
				Usage:   "Add page numbers to the PDF",
			},

			&cli.StringFlag{
				Name:    "openai-api-key",
				Sources: cli.EnvVars("TRIPBOOK_OPENAI_API_KEY", "OPENAI_API_KEY"),
				Usage:   "OpenAI API key",
			},
			&cli.StringFlag{
				Name:    "openai-base-url",
				Sources: cli.EnvVars("TRIPBOOK_OPENAI_BASE_URL"),
				Usage:   "Base URL of an OpenAI compatible endpoint",
			},
			&cli.StringFlag{
				Name:    "claude-api-key",
				Sources: cli.EnvVars("TRIPBOOK_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"),
				Usage:   "Anthropic API key",
			},
			&cli.StringFlag{
				Name:    "gemini-api-key",
				Sources: cli.EnvVars("TRIPBOOK_GEMINI_API_KEY", "GEMINI_API_KEY"),
				Usage:   "Gemini Developer API key",
			},
			&cli.StringFlag{
				Name:    "gemini-project",
				Sources: cli.EnvVars("TRIPBOOK_GEMINI_PROJECT"),
				Usage:   "GCP project ID for Gemini on Vertex AI",
			},
			&cli.StringFlag{
				Name:    "gemini-location",
				Value:   "us-central1",
				Sources: cli.EnvVars("TRIPBOOK_GEMINI_LOCATION"),
				Usage:   "GCP location for Gemini on Vertex AI",
			},
			&cli.StringFlag{
				Name:    "gcs-credentials",
				Sources: cli.EnvVars("TRIPBOOK_GCS_CREDENTIALS"),
				Usage:   "Service account credentials file for gs:// outputs",
			},

			&cli.StringFlag{
				Name:    "trace-dir",
				Sources: cli.EnvVars("TRIPBOOK_TRACE_DIR"),
				Usage:   "Directory to save a JSON trace of the model call",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Sources: cli.EnvVars("TRIPBOOK_LOG_LEVEL"),
				Usage:   "Log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Sources: cli.EnvVars("TRIPBOOK_LOG_FORMAT"),
				Usage:   "Log format (text, json)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if path := cmd.String("env-file"); path != "" {
				if err := loadEnvFile(path); err != nil {
					return err
				}
			}

			base := &Config{}
			if path := cmd.String("config"); path != "" {
				loaded, err := loadConfigFile(path)
				if err != nil {
					return err
				}
				base = loaded
			}

			cfg := configFromCommand(cmd, base)
			cfg.fillCredentialsFromEnv()
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}

			if cfg.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
				defer cancel()
			}

			gen, err := gc.newGenerator(ctx, cfg)
			if err != nil {
				return err
			}

			dest, err := runGenerate(ctx, cfg, gen, logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.Root().Writer, "Handbook PDF generated: %s\n", dest)
			return nil
		},
	}
}

// configFromCommand overlays flag values on base. A flag wins when it was
// set explicitly (or through its env var) or when the config file does not
// have the matching key, so zero values in the file are kept.
func configFromCommand(cmd *cli.Command, base *Config) *Config {
	cfg := *base

	use := func(name string) bool {
		return cmd.IsSet(name) || !base.hasFileKey(strings.ReplaceAll(name, "-", "_"))
	}
	str := func(name string, dst *string) {
		if use(name) {
			*dst = cmd.String(name)
		}
	}
	num := func(name string, dst *int) {
		if use(name) {
			*dst = int(cmd.Int(name))
		}
	}

	str("season", &cfg.Season)
	str("location", &cfg.Location)
	num("days", &cfg.Days)
	num("people", &cfg.People)

	str("provider", &cfg.Provider)
	str("model", &cfg.Model)
	if use("temperature") {
		cfg.Temperature = cmd.Float("temperature")
	}
	if use("timeout") {
		cfg.Timeout = cmd.Duration("timeout")
	}

	str("template", &cfg.Template)
	str("output", &cfg.Output)
	str("html-output", &cfg.HTMLOutput)
	if use("page-numbers") {
		cfg.PageNumbers = cmd.Bool("page-numbers")
	}

	str("openai-api-key", &cfg.OpenAIAPIKey)
	str("openai-base-url", &cfg.OpenAIBaseURL)
	str("claude-api-key", &cfg.ClaudeAPIKey)
	str("gemini-api-key", &cfg.GeminiAPIKey)
	str("gemini-project", &cfg.GeminiProject)
	str("gemini-location", &cfg.GeminiLocation)
	str("gcs-credentials", &cfg.GCSCredentials)

	str("trace-dir", &cfg.TraceDir)
	str("log-level", &cfg.LogLevel)
	str("log-format", &cfg.LogFormat)

	return &cfg
}

// newGenerator creates the provider client selected by cfg.
func newGenerator(ctx context.Context, cfg *Config) (tripbook.Generator, error) {
	switch cfg.Provider {
	case providerOpenAI:
		opts := []openai.Option{openai.WithTemperature(float32(cfg.Temperature))}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.OpenAIBaseURL))
		}
		return openai.New(ctx, cfg.OpenAIAPIKey, opts...)

	case providerClaude:
		return claude.New(ctx, cfg.ClaudeAPIKey, claude.WithTemperature(cfg.Temperature))

	case providerGemini:
		opts := []gemini.Option{gemini.WithTemperature(float32(cfg.Temperature))}
		if cfg.GeminiAPIKey != "" {
			return gemini.NewWithAPIKey(ctx, cfg.GeminiAPIKey, opts...)
		}
		return gemini.New(ctx, cfg.GeminiProject, cfg.GeminiLocation, opts...)

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "unknown provider", goerr.V("provider", cfg.Provider))
	}
}

// runGenerate runs the whole pipeline for cfg: content generation, template
// rendering, PDF layout and upload. It returns the PDF destination.
func runGenerate(ctx context.Context, cfg *Config, gen tripbook.Generator, logger *slog.Logger) (string, error) {
	var renderOpts []render.Option
	if cfg.Template != "" {
		renderOpts = append(renderOpts, render.WithTemplateFile(cfg.Template))
	}
	renderer, err := render.New(renderOpts...)
	if err != nil {
		return "", err
	}

	trip := cfg.Trip()
	adapterOpts := []tripbook.Option{tripbook.WithLogger(logger)}
	if cfg.Model != "" {
		adapterOpts = append(adapterOpts, tripbook.WithModel(cfg.Model))
	}
	if cfg.TraceDir != "" {
		rec := trace.New(
			trace.WithRepository(trace.NewFileRepository(cfg.TraceDir)),
			trace.WithMetadata(trace.TraceMetadata{
				Model: cfg.Model,
				Labels: map[string]string{
					"provider": cfg.Provider,
					"location": trip.Location,
					"season":   trip.Season,
				},
			}),
		)
		adapterOpts = append(adapterOpts, tripbook.WithTrace(rec))
	}

	content, err := tripbook.New(gen, adapterOpts...).Generate(ctx, trip)
	if err != nil {
		return "", err
	}

	var doc bytes.Buffer
	if err := renderer.Render(&doc, &render.Handbook{Trip: trip, Content: content}); err != nil {
		return "", err
	}

	// Lay the PDF out before touching any destination so that a failure
	// leaves earlier outputs in place.
	var pdfDoc bytes.Buffer
	if err := pdf.New(pdf.WithPageNumbers(cfg.PageNumbers)).Write(ctx, doc.String(), &pdfDoc); err != nil {
		return "", err
	}

	var outputOpts []output.Option
	if cfg.GCSCredentials != "" {
		outputOpts = append(outputOpts, output.WithGoogleCloudOptions(option.WithCredentialsFile(cfg.GCSCredentials)))
	}

	if cfg.HTMLOutput != "" {
		opts := slices.Concat(outputOpts, []output.Option{output.WithContentType("text/html; charset=utf-8")})
		if err := writeTo(ctx, cfg.HTMLOutput, doc.Bytes(), opts...); err != nil {
			return "", err
		}
		logger.Info("handbook HTML written", "dest", cfg.HTMLOutput)
	}

	if err := writeTo(ctx, cfg.Output, pdfDoc.Bytes(), outputOpts...); err != nil {
		return "", err
	}
	logger.Info("handbook PDF written", "dest", cfg.Output)

	return cfg.Output, nil
}

func writeTo(ctx context.Context, dest string, data []byte, opts ...output.Option) error {
	w, err := output.Open(ctx, dest, opts...)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Abort()
		return goerr.Wrap(err, "failed to write output", goerr.V("dest", dest))
	}

	return w.Close()
}
