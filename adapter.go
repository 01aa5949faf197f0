package tripbook

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tripbook/trace"
)

// Event kinds recorded in the trace by Generate.
const (
	EventExtraInvocations   = "extra_invocations_ignored"
	EventUnexpectedToolName = "unexpected_tool_name"
	EventSchemaViolation    = "schema_violation"
)

// Adapter is the structured content generation adapter. It builds the
// request, calls the Generator once, validates the answer and normalizes it.
//
// An Adapter holds no mutable state and may be shared between goroutines
// when its Generator (and trace handler, if any) supports concurrent use.
type Adapter struct {
	gen Generator

	adapterConfig
}

type adapterConfig struct {
	logger      *slog.Logger
	model       string
	middlewares []GenerateMiddleware
	tracer      trace.Handler
}

// Option is the type for the options of Adapter.
type Option func(*adapterConfig)

// WithLogger sets the logger. Logs are discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *adapterConfig) {
		c.logger = logger
	}
}

// WithModel overrides the provider default model for every request.
func WithModel(model string) Option {
	return func(c *adapterConfig) {
		c.model = model
	}
}

// WithMiddleware adds middlewares around the model call.
func WithMiddleware(middlewares ...GenerateMiddleware) Option {
	return func(c *adapterConfig) {
		c.middlewares = append(c.middlewares, middlewares...)
	}
}

// WithTrace sets a trace handler. The handler receives one generate span per
// Generate call with the model call as a child span, and is finished when
// Generate returns.
func WithTrace(h trace.Handler) Option {
	return func(c *adapterConfig) {
		c.tracer = h
	}
}

// New creates a new Adapter backed by gen.
func New(gen Generator, options ...Option) *Adapter {
	x := &Adapter{
		gen: gen,
		adapterConfig: adapterConfig{
			logger: slog.New(slog.DiscardHandler),
		},
	}

	for _, opt := range options {
		opt(&x.adapterConfig)
	}

	return x
}

// Generate produces the handbook content for trip. trip must satisfy
// TripParameters.Validate; Generate does not check it.
//
// The model is called exactly once. If its answer lacks a valid structured
// invocation the error wraps ErrSchemaViolation and no content is returned.
// Errors of the model call itself are returned wrapped as they are.
func (x *Adapter) Generate(ctx context.Context, trip TripParameters) (_ *HandbookContent, err error) {
	req := BuildRequest(trip)
	req.ID = uuid.NewString()
	req.Model = x.model

	logger := x.logger.With("request_id", req.ID)
	ctx = ctxWithLogger(ctx, logger)

	if x.tracer != nil {
		ctx = x.tracer.StartGenerate(ctx, req.ID)
		defer func() {
			x.tracer.EndGenerate(ctx, err)
			if finishErr := x.tracer.Finish(ctx); finishErr != nil {
				logger.Warn("failed to finish trace", "error", finishErr)
			}
		}()
	}

	logger.Debug("sending handbook request", "request", req, "trip", trip)

	resp, err := x.callModel(ctx, req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate handbook content", goerr.V("request_id", req.ID))
	}

	if !resp.HasData() {
		logger.Debug("model returned an empty response")
	} else {
		logger.Debug("received model response",
			"texts", len(resp.Texts),
			"function_calls", len(resp.FunctionCalls),
			"input_token", resp.InputToken,
			"output_token", resp.OutputToken,
		)
	}

	if len(resp.FunctionCalls) > 1 {
		logger.Warn("model returned multiple invocations, using the first",
			"count", len(resp.FunctionCalls))
		x.addEvent(ctx, EventExtraInvocations, map[string]any{
			"count":   len(resp.FunctionCalls),
			"ignored": len(resp.FunctionCalls) - 1,
		})
	}
	if len(resp.FunctionCalls) > 0 && resp.FunctionCalls[0] != nil && resp.FunctionCalls[0].Name != ContentToolName {
		logger.Warn("model invoked an unexpected tool name",
			"name", resp.FunctionCalls[0].Name, "expected", ContentToolName)
		x.addEvent(ctx, EventUnexpectedToolName, map[string]any{
			"name":     resp.FunctionCalls[0].Name,
			"expected": ContentToolName,
		})
	}

	fields, err := ValidateResponse(resp)
	if err != nil {
		logger.Error("model response failed validation", "error", err)
		x.addEvent(ctx, EventSchemaViolation, map[string]any{
			"error": err.Error(),
		})
		return nil, goerr.Wrap(err, "invalid model response", goerr.V("request_id", req.ID))
	}

	content := Normalize(fields)
	logger.Info("handbook content generated",
		"equipment", len(fields.EquipmentList),
		"dangers", len(fields.DangersList),
		"safety_tips", len(fields.SafetyTips),
	)

	return content, nil
}

// addEvent records an event span under the generate span if tracing is on.
func (x *Adapter) addEvent(ctx context.Context, kind string, data any) {
	if x.tracer != nil {
		x.tracer.AddEvent(ctx, kind, data)
	}
}

// callModel runs the middleware chain around the Generator inside an
// llm_call span. A nil response is treated as an empty one.
func (x *Adapter) callModel(ctx context.Context, req *Request) (*Response, error) {
	handler := BuildGenerateChain(x.middlewares, x.gen.Generate)

	if x.tracer == nil {
		resp, err := handler(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp == nil {
			resp = &Response{}
		}
		return resp, nil
	}

	llmCtx := x.tracer.StartLLMCall(ctx)
	resp, err := handler(llmCtx, req)
	if err == nil && resp == nil {
		resp = &Response{}
	}
	x.tracer.EndLLMCall(llmCtx, newLLMCallData(req, resp), err)

	if err != nil {
		return nil, err
	}
	return resp, nil
}

func newLLMCallData(req *Request, resp *Response) *trace.LLMCallData {
	data := &trace.LLMCallData{
		Model: req.Model,
		Request: &trace.LLMRequest{
			SystemPrompt: req.SystemInstruction,
			UserPrompt:   req.UserInstruction,
		},
	}
	for _, tool := range req.Tools {
		data.Request.Tools = append(data.Request.Tools, trace.ToolSpec{
			Name:        tool.Name,
			Description: tool.Description,
		})
	}

	if resp == nil {
		return data
	}

	data.InputTokens = resp.InputToken
	data.OutputTokens = resp.OutputToken
	data.Response = &trace.LLMResponse{Texts: resp.Texts}
	for _, call := range resp.FunctionCalls {
		if call == nil {
			continue
		}
		data.Response.FunctionCalls = append(data.Response.FunctionCalls, &trace.FunctionCall{
			ID:        call.ID,
			Name:      call.Name,
			Arguments: string(call.Arguments),
		})
	}
	return data
}
