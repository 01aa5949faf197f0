package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/tripbook"
	main "github.com/m-mizutani/tripbook/cmd/tripbook"
	"github.com/m-mizutani/tripbook/internal"
	"github.com/m-mizutani/tripbook/mock"
)

func handbookGenerator(t *testing.T) *mock.GeneratorMock {
	args, err := json.Marshal(map[string]any{
		"equipment_list":      []string{"tent", "water"},
		"overview_text":       "Tidewater glaciers and cold rain.",
		"expected_conditions": "Rain, 10C",
		"dangers_list":        []string{"hypothermia", "bears"},
		"safety_tips":         []string{"file a trip plan"},
		"map_image_url":       "https://example.com/glba.png",
		"map_caption":         "Glacier Bay",
	})
	gt.NoError(t, err)

	return &mock.GeneratorMock{
		GenerateFunc: func(ctx context.Context, req *tripbook.Request) (*tripbook.Response, error) {
			return &tripbook.Response{
				FunctionCalls: []*tripbook.FunctionCall{
					{ID: "call_1", Name: tripbook.ContentToolName, Arguments: args},
				},
			}, nil
		},
	}
}

func baseConfig(t *testing.T) *main.Config {
	dir := t.TempDir()
	return &main.Config{
		Season:       "summer",
		Location:     "Glacier Bay National Park, Alaska",
		Days:         3,
		People:       4,
		Provider:     "openai",
		OpenAIAPIKey: "dummy",
		Output:       filepath.Join(dir, "out", "handbook.pdf"),
		HTMLOutput:   filepath.Join(dir, "out", "handbook.html"),
	}
}

func TestRunGenerate(t *testing.T) {
	cfg := baseConfig(t)
	gen := handbookGenerator(t)

	dest, err := main.RunGenerate(t.Context(), cfg, gen, internal.TestLogger())
	gt.NoError(t, err)
	gt.Equal(t, dest, cfg.Output)
	gt.A(t, gen.GenerateCalls()).Length(1)

	req := gen.GenerateCalls()[0].Req
	gt.Equal(t, req.UserInstruction, "Create content for a Summer expedition to Glacier Bay National Park, Alaska lasting 3 days for 4 people.")

	pdfData, err := os.ReadFile(cfg.Output)
	gt.NoError(t, err)
	gt.True(t, bytes.HasPrefix(pdfData, []byte("%PDF-")))

	htmlData, err := os.ReadFile(cfg.HTMLOutput)
	gt.NoError(t, err)
	gt.S(t, string(htmlData)).Contains("<ul><li>hypothermia</li><li>bears</li></ul>")
	gt.S(t, string(htmlData)).Contains("Summer Survival Handbook")
}

func TestRunGenerateWithTrace(t *testing.T) {
	cfg := baseConfig(t)
	cfg.TraceDir = filepath.Join(t.TempDir(), "traces")
	gen := handbookGenerator(t)

	_, err := main.RunGenerate(t.Context(), cfg, gen, internal.TestLogger())
	gt.NoError(t, err)

	reqID := gen.GenerateCalls()[0].Req.ID
	data, err := os.ReadFile(filepath.Join(cfg.TraceDir, reqID+".json"))
	gt.NoError(t, err)
	gt.S(t, string(data)).Contains(`"provider": "openai"`)
	gt.S(t, string(data)).Contains(`"kind": "llm_call"`)
}

func TestRunGenerateModelOverride(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Model = "gpt-4o"
	gen := handbookGenerator(t)

	_, err := main.RunGenerate(t.Context(), cfg, gen, internal.TestLogger())
	gt.NoError(t, err)
	gt.Equal(t, gen.GenerateCalls()[0].Req.Model, "gpt-4o")
}

func TestRunGenerateSchemaViolation(t *testing.T) {
	cfg := baseConfig(t)
	gen := &mock.GeneratorMock{
		GenerateFunc: func(ctx context.Context, req *tripbook.Request) (*tripbook.Response, error) {
			return &tripbook.Response{Texts: []string{"Here is your handbook..."}}, nil
		},
	}

	_, err := main.RunGenerate(t.Context(), cfg, gen, internal.TestLogger())
	gt.True(t, errors.Is(err, tripbook.ErrSchemaViolation))

	_, statErr := os.Stat(cfg.Output)
	gt.True(t, os.IsNotExist(statErr))
}

func TestRunGenerateKeepsOutputOnFailure(t *testing.T) {
	cfg := baseConfig(t)
	gt.NoError(t, os.MkdirAll(filepath.Dir(cfg.Output), 0755))
	gt.NoError(t, os.WriteFile(cfg.Output, []byte("%PDF-previous handbook"), 0600))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	answer := handbookGenerator(t)
	gen := &mock.GeneratorMock{
		GenerateFunc: func(ctx context.Context, req *tripbook.Request) (*tripbook.Response, error) {
			// the deadline hits after the model answered, during PDF layout
			defer cancel()
			return answer.Generate(ctx, req)
		},
	}

	_, err := main.RunGenerate(ctx, cfg, gen, internal.TestLogger())
	gt.True(t, errors.Is(err, context.Canceled))

	data, err := os.ReadFile(cfg.Output)
	gt.NoError(t, err)
	gt.Equal(t, string(data), "%PDF-previous handbook")

	_, statErr := os.Stat(cfg.HTMLOutput)
	gt.True(t, os.IsNotExist(statErr))

	entries, err := os.ReadDir(filepath.Dir(cfg.Output))
	gt.NoError(t, err)
	gt.A(t, entries).Length(1)
}

func TestRunGenerateTemplateError(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Template = filepath.Join(t.TempDir(), "missing.html")
	gen := handbookGenerator(t)

	_, err := main.RunGenerate(t.Context(), cfg, gen, internal.TestLogger())
	gt.Error(t, err)
	gt.A(t, gen.GenerateCalls()).Length(0)
}

func TestGenerateCommand(t *testing.T) {
	t.Run("flags override config file", func(t *testing.T) {
		dir := t.TempDir()
		cfgPath := filepath.Join(dir, "tripbook.yaml")
		gt.NoError(t, os.WriteFile(cfgPath, []byte(strings.Join([]string{
			"season: winter",
			"location: Banff National Park",
			"days: 5",
			"people: 2",
			"output: " + filepath.Join(dir, "from-file.pdf"),
		}, "\n")), 0600))

		gen := handbookGenerator(t)
		cmd := main.GenerateCommand(gen)
		var out bytes.Buffer
		cmd.Writer = &out

		err := cmd.Run(t.Context(), []string{
			"generate",
			"--config", cfgPath,
			"--days", "2",
			"--openai-api-key", "dummy",
			"--log-level", "error",
		})
		gt.NoError(t, err)
		gt.A(t, gen.GenerateCalls()).Length(1)
		gt.Equal(t, gen.GenerateCalls()[0].Req.UserInstruction,
			"Create content for a Winter expedition to Banff National Park lasting 2 days for 2 people.")
		gt.S(t, out.String()).Contains("from-file.pdf")

		_, err = os.Stat(filepath.Join(dir, "from-file.pdf"))
		gt.NoError(t, err)
	})

	t.Run("zero values in config file are kept", func(t *testing.T) {
		dir := t.TempDir()
		cfgPath := filepath.Join(dir, "tripbook.yaml")
		gt.NoError(t, os.WriteFile(cfgPath, []byte(strings.Join([]string{
			"season: fall",
			"location: Denali",
			"days: 4",
			"people: 2",
			"temperature: 0",
			"timeout: 0s",
			"output: " + filepath.Join(dir, "denali.pdf"),
		}, "\n")), 0600))

		var resolved main.Config
		cmd := main.GenerateCommandWithCapture(handbookGenerator(t), &resolved)
		cmd.Writer = &bytes.Buffer{}

		gt.NoError(t, cmd.Run(t.Context(), []string{
			"generate",
			"--config", cfgPath,
			"--openai-api-key", "dummy",
			"--log-level", "error",
		}))
		gt.Equal(t, resolved.Temperature, 0.0)
		gt.Equal(t, resolved.Timeout, time.Duration(0))
		gt.Equal(t, resolved.Provider, "openai")
		gt.Equal(t, resolved.Days, 4)
	})

	t.Run("flag overrides zero value in config file", func(t *testing.T) {
		dir := t.TempDir()
		cfgPath := filepath.Join(dir, "tripbook.yaml")
		gt.NoError(t, os.WriteFile(cfgPath, []byte(strings.Join([]string{
			"season: fall",
			"location: Denali",
			"days: 4",
			"people: 2",
			"temperature: 0",
			"output: " + filepath.Join(dir, "denali.pdf"),
		}, "\n")), 0600))

		var resolved main.Config
		cmd := main.GenerateCommandWithCapture(handbookGenerator(t), &resolved)
		cmd.Writer = &bytes.Buffer{}

		gt.NoError(t, cmd.Run(t.Context(), []string{
			"generate",
			"--config", cfgPath,
			"--temperature", "0.3",
			"--openai-api-key", "dummy",
			"--log-level", "error",
		}))
		gt.Equal(t, resolved.Temperature, 0.3)
		gt.Equal(t, resolved.Timeout, 3*time.Minute)
	})

	t.Run("invalid season is rejected before the model call", func(t *testing.T) {
		gen := handbookGenerator(t)
		err := main.GenerateCommand(gen).Run(t.Context(), []string{
			"generate",
			"--season", "monsoon",
			"--location", "Kerala",
			"--days", "3",
			"--people", "2",
			"--openai-api-key", "dummy",
			"--output", filepath.Join(t.TempDir(), "x.pdf"),
		})
		gt.True(t, errors.Is(err, main.ErrInvalidConfig))
		gt.A(t, gen.GenerateCalls()).Length(0)
	})
}

func TestSchemaCommand(t *testing.T) {
	cmd := main.SchemaCommand()
	var out bytes.Buffer
	cmd.Writer = &out

	gt.NoError(t, cmd.Run(t.Context(), []string{"schema"}))

	var doc map[string]any
	gt.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	gt.Equal(t, doc["name"], any(tripbook.ContentToolName))

	params := doc["parameters"].(map[string]any)
	gt.Equal(t, len(params["required"].([]any)), 7)
}
