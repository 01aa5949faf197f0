package tripbook

import "context"

// GenerateHandler sends a request to the model. Generator.Generate is the
// innermost handler of a chain.
type GenerateHandler func(ctx context.Context, req *Request) (*Response, error)

// GenerateMiddleware wraps a GenerateHandler to add behavior around the
// model call, e.g. request rewriting or response inspection.
type GenerateMiddleware func(next GenerateHandler) GenerateHandler

// BuildGenerateChain builds a chain of GenerateMiddleware functions.
// The middlewares are applied in the order they are provided, so the first
// one sees the request first and the response last.
func BuildGenerateChain(middlewares []GenerateMiddleware, handler GenerateHandler) GenerateHandler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}
