package trace

import "context"

// Handler is the interface for trace backends.
// Implementations receive lifecycle events during handbook generation
// and can record, export, or forward them as needed.
type Handler interface {
	// StartGenerate starts the root generate_handbook span.
	StartGenerate(ctx context.Context, requestID string) context.Context
	// EndGenerate ends the root span.
	EndGenerate(ctx context.Context, err error)

	// StartLLMCall starts an LLM call span.
	StartLLMCall(ctx context.Context) context.Context
	// EndLLMCall ends an LLM call span with the given data.
	EndLLMCall(ctx context.Context, data *LLMCallData, err error)

	// AddEvent adds an event to the current span.
	AddEvent(ctx context.Context, kind string, data any)

	// Finish completes the trace and performs any final operations.
	Finish(ctx context.Context) error
}
