package gemini

import (
	"github.com/m-mizutani/tripbook"
	"google.golang.org/genai"
)

// convertTool converts tripbook.ToolSpec to Gemini function declaration
func convertTool(spec *tripbook.ToolSpec) *genai.FunctionDeclaration {
	// Gemini requires an empty slice, not nil
	required := spec.Required()
	if required == nil {
		required = []string{}
	}

	parameters := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema),
		Required:   required,
	}

	for name, param := range spec.Parameters {
		parameters.Properties[name] = convertParameterToSchema(param)
	}

	return &genai.FunctionDeclaration{
		Name:        spec.Name,
		Description: spec.Description,
		Parameters:  parameters,
	}
}

// convertParameterToSchema converts tripbook.Parameter to Gemini schema
func convertParameterToSchema(param *tripbook.Parameter) *genai.Schema {
	schema := &genai.Schema{
		Type:        getGeminiType(param.Type),
		Description: param.Description,
		Title:       param.Title,
	}

	if len(param.Enum) > 0 {
		schema.Enum = param.Enum
	}

	if param.Properties != nil {
		schema.Properties = make(map[string]*genai.Schema)
		for name, prop := range param.Properties {
			schema.Properties[name] = convertParameterToSchema(prop)
		}
		schema.Required = tripbook.CollectRequiredFields(param.Properties)
		if schema.Required == nil {
			schema.Required = []string{}
		}
	}

	if param.Items != nil {
		schema.Items = convertParameterToSchema(param.Items)
	}

	switch param.Type {
	case tripbook.TypeString:
		if param.MinLength != nil {
			minLen := int64(*param.MinLength)
			schema.MinLength = &minLen
		}
		if param.MaxLength != nil {
			maxLen := int64(*param.MaxLength)
			schema.MaxLength = &maxLen
		}
		if param.Pattern != "" {
			schema.Pattern = param.Pattern
		}

	case tripbook.TypeArray:
		if param.MinItems != nil {
			minItems := int64(*param.MinItems)
			schema.MinItems = &minItems
		}
		if param.MaxItems != nil {
			maxItems := int64(*param.MaxItems)
			schema.MaxItems = &maxItems
		}
	}

	return schema
}

func getGeminiType(paramType tripbook.ParameterType) genai.Type {
	switch paramType {
	case tripbook.TypeString:
		return genai.TypeString
	case tripbook.TypeNumber:
		return genai.TypeNumber
	case tripbook.TypeInteger:
		return genai.TypeInteger
	case tripbook.TypeBoolean:
		return genai.TypeBoolean
	case tripbook.TypeArray:
		return genai.TypeArray
	case tripbook.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

func convertToolConfig(choice tripbook.ToolChoice) *genai.ToolConfig {
	switch choice {
	case tripbook.ToolChoiceAuto:
		return &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: genai.FunctionCallingConfigModeAuto,
			},
		}
	default:
		return nil
	}
}
