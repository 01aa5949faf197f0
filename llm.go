package tripbook

import (
	"context"
	"encoding/json"
	"log/slog"
)

//go:generate go tool moq -out mock/mock.go -pkg mock . Generator

// Generator is the generative model invocation service. Each provider
// package (llm/openai, llm/claude, llm/gemini) implements it.
type Generator interface {
	// Generate sends req to the model as a single call and returns the raw
	// response. It does not retry; a failed call is returned as error.
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// FunctionCall is a structured tool invocation chosen by the model.
type FunctionCall struct {
	ID   string
	Name string

	// Arguments is the JSON-encoded argument payload as sent by the model.
	// It is decoded only by ValidateResponse.
	Arguments json.RawMessage
}

func (x *FunctionCall) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", x.ID),
		slog.String("name", x.Name),
		slog.Int("arguments_size", len(x.Arguments)),
	)
}

// Response is the raw result of a model call. It may or may not contain a
// structured invocation matching ContentSchema.
type Response struct {
	Texts         []string
	FunctionCalls []*FunctionCall
	InputToken    int
	OutputToken   int
}

func (r *Response) HasData() bool {
	return len(r.Texts) > 0 || len(r.FunctionCalls) > 0
}
