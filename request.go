package tripbook

import (
	"fmt"
	"log/slog"
)

// ToolChoice is the policy telling the model how to pick among offered tools.
type ToolChoice string

const (
	// ToolChoiceAuto lets the model decide whether and which tool to call.
	ToolChoiceAuto ToolChoice = "auto"
)

// SystemInstruction is the fixed system prompt of every handbook request.
const SystemInstruction = "You are a professional survival handbook generator."

// Request is a fully specified model invocation.
type Request struct {
	// ID correlates log lines of one generation. Empty when built outside
	// an Adapter.
	ID string

	SystemInstruction string
	UserInstruction   string

	// Tools always holds exactly ContentSchema.
	Tools      []*ToolSpec
	ToolChoice ToolChoice

	// Model overrides the provider's default model when non-empty.
	Model string
}

func (r *Request) LogValue() slog.Value {
	names := make([]string, len(r.Tools))
	for i, t := range r.Tools {
		names[i] = t.Name
	}
	return slog.GroupValue(
		slog.String("id", r.ID),
		slog.String("user_instruction", r.UserInstruction),
		slog.Any("tools", names),
		slog.String("tool_choice", string(r.ToolChoice)),
		slog.String("model", r.Model),
	)
}

// BuildRequest assembles the generation request for trip. It is pure and
// performs no validation; see TripParameters.Validate.
func BuildRequest(trip TripParameters) *Request {
	return &Request{
		SystemInstruction: SystemInstruction,
		UserInstruction:   userInstruction(trip),
		Tools:             []*ToolSpec{ContentSchema()},
		ToolChoice:        ToolChoiceAuto,
	}
}

func userInstruction(trip TripParameters) string {
	return fmt.Sprintf("Create content for a %s expedition to %s lasting %d days for %d people.",
		trip.Season, trip.Location, trip.DurationDays, trip.GroupSize)
}
