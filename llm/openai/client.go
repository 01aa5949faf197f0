package openai

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tripbook"
	"github.com/sashabaranov/go-openai"
)

// generationParameters represents the parameters for text generation.
type generationParameters struct {
	// Temperature controls randomness in the output.
	// Higher values make the output more random, lower values make it more focused.
	Temperature float32

	// MaxTokens limits the number of tokens to generate.
	MaxTokens int
}

// Client is a client for the OpenAI chat completions API.
// It implements tripbook.Generator.
type Client struct {
	apiClient apiClient

	// defaultModel is used when the request does not name a model.
	defaultModel string

	// baseURL is the custom base URL for the OpenAI API.
	// If empty, uses the default OpenAI API endpoints.
	baseURL string

	params generationParameters
}

// DefaultModel is the model the handbook generator was tuned with.
const DefaultModel = "gpt-4-1106-preview"

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel sets the default model to use for chat completions.
// See default model in [DefaultModel].
func WithModel(modelName string) Option {
	return func(c *Client) {
		c.defaultModel = modelName
	}
}

// WithTemperature sets the temperature parameter for text generation.
func WithTemperature(temp float32) Option {
	return func(c *Client) {
		c.params.Temperature = temp
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(maxTokens int) Option {
	return func(c *Client) {
		c.params.MaxTokens = maxTokens
	}
}

// WithBaseURL sets the custom base URL for the OpenAI API.
// Allows usage with compatible endpoints, proxies, or self-hosted instances.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// New creates a new client for the OpenAI API.
func New(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("OpenAI API key is required")
	}

	client := &Client{
		defaultModel: DefaultModel,
	}

	for _, option := range options {
		option(client)
	}

	config := openai.DefaultConfig(apiKey)
	if client.baseURL != "" {
		config.BaseURL = client.baseURL
	}

	client.apiClient = &realAPIClient{client: openai.NewClientWithConfig(config)}

	return client, nil
}

// createRequest converts a tripbook.Request into a chat completion request.
func (c *Client) createRequest(req *tripbook.Request) openai.ChatCompletionRequest {
	model := c.defaultModel
	if req.Model != "" {
		model = req.Model
	}

	tools := make([]openai.Tool, len(req.Tools))
	for i, spec := range req.Tools {
		tools[i] = convertTool(spec)
	}

	return openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: req.UserInstruction},
		},
		Tools:       tools,
		ToolChoice:  convertToolChoice(req.ToolChoice),
		Temperature: c.params.Temperature,
		MaxTokens:   c.params.MaxTokens,
	}
}

// Generate sends req as a single chat completion call.
func (c *Client) Generate(ctx context.Context, req *tripbook.Request) (*tripbook.Response, error) {
	logger := tripbook.LoggerFromContext(ctx)

	openaiReq := c.createRequest(req)
	logger.Debug("OpenAI request",
		"model", openaiReq.Model,
		"tools", len(openaiReq.Tools),
	)

	resp, err := c.apiClient.CreateChatCompletion(ctx, openaiReq)
	if err != nil {
		opts := append(tokenLimitErrorOptions(err), goerr.V("model", openaiReq.Model))
		return nil, goerr.Wrap(err, "failed to create chat completion", opts...)
	}

	result := processResponse(resp)
	logger.Debug("OpenAI response",
		"model", resp.Model,
		"choices", len(resp.Choices),
		"tool_calls", len(result.FunctionCalls),
	)

	return result, nil
}

// processResponse converts the first choice of resp to tripbook.Response.
// Tool call arguments are kept as the raw JSON string the API returned.
func processResponse(resp openai.ChatCompletionResponse) *tripbook.Response {
	response := &tripbook.Response{
		Texts:         make([]string, 0),
		FunctionCalls: make([]*tripbook.FunctionCall, 0),
		InputToken:    resp.Usage.PromptTokens,
		OutputToken:   resp.Usage.CompletionTokens,
	}

	if len(resp.Choices) == 0 {
		return response
	}

	message := resp.Choices[0].Message
	if message.Content != "" {
		response.Texts = append(response.Texts, message.Content)
	}

	for _, toolCall := range message.ToolCalls {
		response.FunctionCalls = append(response.FunctionCalls, &tripbook.FunctionCall{
			ID:        toolCall.ID,
			Name:      toolCall.Function.Name,
			Arguments: []byte(toolCall.Function.Arguments),
		})
	}

	return response
}

// tokenLimitErrorOptions tags context window overflows so that callers can
// shorten the prompt instead of retrying as is.
func tokenLimitErrorOptions(err error) []goerr.Option {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return nil
	}

	if apiErr.Type != "invalid_request_error" {
		return nil
	}

	codeStr, ok := apiErr.Code.(string)
	if !ok {
		return nil
	}

	if codeStr == "context_length_exceeded" {
		return []goerr.Option{goerr.Tag(tripbook.ErrTagTokenExceeded)}
	}

	return nil
}
