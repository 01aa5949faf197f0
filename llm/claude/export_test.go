package claude

// Export for testing
var (
	ConvertTool     = convertTool
	ProcessResponse = processResponse
)

type APIClient = apiClient

// NewWithAPIClient creates a client with a custom API client for testing
func NewWithAPIClient(api apiClient, options ...Option) *Client {
	c := &Client{
		apiClient:    api,
		defaultModel: DefaultModel,
		params: generationParameters{
			Temperature: 0.7,
			MaxTokens:   DefaultMaxTokens,
		},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}
