package gemini

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tripbook"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// Client is a client for the Gemini API, served either by Vertex AI or by
// the Gemini Developer API. It implements tripbook.Generator.
type Client struct {
	apiClient apiClient

	// defaultModel is the model to use when the request does not name one.
	// It can be overridden using WithModel option.
	defaultModel string

	// generationConfig contains the default generation parameters
	generationConfig *genai.GenerateContentConfig
}

// Option is a configuration option for the Gemini client.
type Option func(*Client)

// WithModel sets the model to use for text generation.
// Default: "gemini-2.5-flash"
func WithModel(model string) Option {
	return func(c *Client) {
		c.defaultModel = model
	}
}

// WithTemperature sets the temperature parameter for text generation.
// Range: 0.0 to 2.0
func WithTemperature(temp float32) Option {
	return func(c *Client) {
		c.generationConfig.Temperature = &temp
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(maxTokens int32) Option {
	return func(c *Client) {
		c.generationConfig.MaxOutputTokens = maxTokens
	}
}

// WithThinkingBudget sets the thinking budget for text generation.
// A value of -1 enables automatic thinking budget allocation.
func WithThinkingBudget(budget int32) Option {
	return func(c *Client) {
		c.generationConfig.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: &budget,
		}
	}
}

func newClient(options ...Option) *Client {
	var budget int32 = 0

	client := &Client{
		defaultModel: DefaultModel,
		generationConfig: &genai.GenerateContentConfig{
			ThinkingConfig: &genai.ThinkingConfig{
				ThinkingBudget: &budget,
			},
		},
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// New creates a new client backed by Vertex AI.
// It requires a project ID and location.
func New(ctx context.Context, projectID, location string, options ...Option) (*Client, error) {
	if projectID == "" {
		return nil, goerr.New("projectID is required")
	}
	if location == "" {
		return nil, goerr.New("location is required")
	}

	client := newClient(options...)

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Vertex AI client",
			goerr.V("project", projectID), goerr.V("location", location))
	}

	client.apiClient = &realAPIClient{client: gc}
	return client, nil
}

// NewWithAPIKey creates a new client backed by the Gemini Developer API.
func NewWithAPIKey(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("Gemini API key is required")
	}

	client := newClient(options...)

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}

	client.apiClient = &realAPIClient{client: gc}
	return client, nil
}

// createRequest builds the model name, contents and config for req.
func (c *Client) createRequest(req *tripbook.Request) (string, []*genai.Content, *genai.GenerateContentConfig) {
	model := c.defaultModel
	if req.Model != "" {
		model = req.Model
	}

	config := &genai.GenerateContentConfig{}
	*config = *c.generationConfig

	if req.SystemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Role:  "system",
			Parts: []*genai.Part{{Text: req.SystemInstruction}},
		}
	}

	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, len(req.Tools))
		for i, spec := range req.Tools {
			decls[i] = convertTool(spec)
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
		config.ToolConfig = convertToolConfig(req.ToolChoice)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.UserInstruction, genai.RoleUser),
	}

	return model, contents, config
}

// Generate sends req as a single GenerateContent call.
func (c *Client) Generate(ctx context.Context, req *tripbook.Request) (*tripbook.Response, error) {
	logger := tripbook.LoggerFromContext(ctx)

	model, contents, config := c.createRequest(req)
	logger.Debug("Gemini request", "model", model, "tools", len(config.Tools))

	resp, err := c.apiClient.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content", goerr.V("model", model))
	}

	result, err := processResponse(resp)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to process Gemini response", goerr.V("model", model))
	}

	logger.Debug("Gemini response",
		"candidates", len(resp.Candidates),
		"tool_calls", len(result.FunctionCalls),
	)

	return result, nil
}

// processResponse converts Gemini response to tripbook.Response. Gemini
// returns arguments as a decoded map, so they are encoded back to JSON here
// and checked later like any other provider's payload.
func processResponse(resp *genai.GenerateContentResponse) (*tripbook.Response, error) {
	response := &tripbook.Response{
		Texts:         make([]string, 0),
		FunctionCalls: make([]*tripbook.FunctionCall, 0),
	}
	if resp == nil {
		return response, nil
	}

	if resp.UsageMetadata != nil {
		response.InputToken = int(resp.UsageMetadata.PromptTokenCount)
		response.OutputToken = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	for _, candidate := range resp.Candidates {
		if candidate.FinishReason != "" {
			if strings.Contains(string(candidate.FinishReason), "MALFORMED_FUNCTION_CALL") {
				return nil, goerr.Wrap(tripbook.ErrSchemaViolation, "malformed function call",
					goerr.V("finish_message", candidate.FinishMessage))
			}
			if strings.Contains(string(candidate.FinishReason), "PROHIBITED_CONTENT") {
				return nil, goerr.New("prohibited content", goerr.Tag(tripbook.ErrTagProhibitedContent))
			}
		}

		if candidate.Content == nil {
			continue
		}

		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				response.Texts = append(response.Texts, part.Text)
			}

			if part.FunctionCall != nil {
				args, err := json.Marshal(part.FunctionCall.Args)
				if err != nil {
					return nil, goerr.Wrap(tripbook.ErrSchemaViolation, "failed to encode function call arguments",
						goerr.V("name", part.FunctionCall.Name), goerr.V("cause", err.Error()))
				}

				id := part.FunctionCall.ID
				if id == "" {
					id = part.FunctionCall.Name + "_" + uuid.NewString()
				}

				response.FunctionCalls = append(response.FunctionCalls, &tripbook.FunctionCall{
					ID:        id,
					Name:      part.FunctionCall.Name,
					Arguments: args,
				})
			}
		}
	}

	return response, nil
}
