package gemini

import "google.golang.org/genai"

// Export for testing
var (
	ConvertTool       = convertTool
	ConvertToolConfig = convertToolConfig
	ProcessResponse   = processResponse
)

type APIClient = apiClient

// NewWithAPIClient creates a client with a custom API client for testing
func NewWithAPIClient(api apiClient, options ...Option) *Client {
	c := newClient(options...)
	c.apiClient = api
	return c
}

// GenerationConfig returns a copy of the default generation config.
func (c *Client) GenerationConfig() genai.GenerateContentConfig {
	return *c.generationConfig
}
