package openai

// Export for testing
var (
	ConvertTool            = convertTool
	TokenLimitErrorOptions = tokenLimitErrorOptions
)

type APIClient = apiClient

// NewWithAPIClient creates a client with a custom API client for testing
func NewWithAPIClient(api apiClient, options ...Option) *Client {
	c := &Client{
		apiClient:    api,
		defaultModel: DefaultModel,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}
