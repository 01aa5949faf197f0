package openai

import (
	"github.com/m-mizutani/tripbook"
	"github.com/sashabaranov/go-openai"
)

// convertTool converts tripbook.ToolSpec to openai.Tool
func convertTool(spec *tripbook.ToolSpec) openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  spec.JSONSchema(),
		},
	}
}

// convertToolChoice maps the tool choice policy to the chat completion
// "tool_choice" value.
func convertToolChoice(choice tripbook.ToolChoice) any {
	switch choice {
	case tripbook.ToolChoiceAuto:
		return "auto"
	default:
		return nil
	}
}
