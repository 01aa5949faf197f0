package claude

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/m-mizutani/tripbook"
)

func convertTool(spec *tripbook.ToolSpec) anthropic.ToolUnionParam {
	schema := spec.JSONSchema()

	tool := anthropic.ToolUnionParamOfTool(
		anthropic.ToolInputSchemaParam{
			Properties: schema["properties"],
			Required:   spec.Required(),
		},
		spec.Name,
	)
	if spec.Description != "" {
		tool.OfTool.Description = anthropic.String(spec.Description)
	}

	return tool
}

func convertToolChoice(choice tripbook.ToolChoice) anthropic.ToolChoiceUnionParam {
	switch choice {
	case tripbook.ToolChoiceAuto:
		return anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	default:
		return anthropic.ToolChoiceUnionParam{}
	}
}

// processResponse converts Claude response to tripbook.Response. Tool use
// input is kept as the raw JSON the API returned.
func processResponse(resp *anthropic.Message) *tripbook.Response {
	response := &tripbook.Response{
		Texts:         make([]string, 0),
		FunctionCalls: make([]*tripbook.FunctionCall, 0),
		InputToken:    int(resp.Usage.InputTokens),
		OutputToken:   int(resp.Usage.OutputTokens),
	}

	for _, content := range resp.Content {
		switch content.Type {
		case "text":
			response.Texts = append(response.Texts, content.Text)
		case "tool_use":
			response.FunctionCalls = append(response.FunctionCalls, &tripbook.FunctionCall{
				ID:        content.ID,
				Name:      content.Name,
				Arguments: content.Input,
			})
		}
	}

	return response
}
