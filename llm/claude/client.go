package claude

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tripbook"
)

// generationParameters represents the parameters for text generation.
type generationParameters struct {
	// Temperature controls randomness in the output.
	// Range: 0.0 to 1.0
	Temperature float64

	// MaxTokens limits the number of tokens to generate. The Messages API
	// requires it, and a handbook easily needs a few thousand tokens.
	MaxTokens int64
}

// Client is a client for the Claude Messages API.
// It implements tripbook.Generator.
type Client struct {
	apiClient apiClient

	// defaultModel is used when the request does not name a model.
	defaultModel string

	params generationParameters
}

const (
	DefaultModel     = "claude-sonnet-4-5"
	DefaultMaxTokens = 4096
)

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel sets the default model. See [DefaultModel].
func WithModel(modelName string) Option {
	return func(c *Client) {
		c.defaultModel = modelName
	}
}

// WithTemperature sets the temperature parameter for text generation.
// Default: 0.7
func WithTemperature(temp float64) Option {
	return func(c *Client) {
		c.params.Temperature = temp
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
// Default: 4096
func WithMaxTokens(maxTokens int64) Option {
	return func(c *Client) {
		c.params.MaxTokens = maxTokens
	}
}

// New creates a new client for the Claude API.
func New(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("Anthropic API key is required")
	}

	client := &Client{
		defaultModel: DefaultModel,
		params: generationParameters{
			Temperature: 0.7,
			MaxTokens:   DefaultMaxTokens,
		},
	}

	for _, option := range options {
		option(client)
	}

	newClient := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	client.apiClient = &realAPIClient{client: &newClient}

	return client, nil
}

// createRequest creates a message request from a tripbook.Request.
func (c *Client) createRequest(req *tripbook.Request) anthropic.MessageNewParams {
	model := c.defaultModel
	if req.Model != "" {
		model = req.Model
	}

	tools := make([]anthropic.ToolUnionParam, len(req.Tools))
	for i, spec := range req.Tools {
		tools[i] = convertTool(spec)
	}

	return anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   c.params.MaxTokens,
		Temperature: anthropic.Float(c.params.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: req.SystemInstruction},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserInstruction)),
		},
		Tools:      tools,
		ToolChoice: convertToolChoice(req.ToolChoice),
	}
}

// Generate sends req as a single Messages API call.
func (c *Client) Generate(ctx context.Context, req *tripbook.Request) (*tripbook.Response, error) {
	logger := tripbook.LoggerFromContext(ctx)

	params := c.createRequest(req)
	logger.Debug("Claude request", "model", params.Model, "tools", len(params.Tools))

	resp, err := c.apiClient.MessagesNew(ctx, params)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create message", goerr.V("model", params.Model))
	}

	result := processResponse(resp)
	logger.Debug("Claude response",
		"stop_reason", resp.StopReason,
		"tool_calls", len(result.FunctionCalls),
	)

	return result, nil
}
