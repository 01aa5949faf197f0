package tripbook

import (
	"regexp"
	"sort"

	"github.com/m-mizutani/goerr/v2"
)

// ToolSpec is the specification of a tool offered to the model.
// The model answers with a FunctionCall whose arguments follow Parameters.
type ToolSpec struct {
	// Name is the identifier the model uses to invoke the tool.
	Name string

	// Description tells the model what the tool is for.
	Description string

	// Parameters defines the arguments of the tool by name.
	// A parameter is mandatory when its Required flag is set.
	Parameters map[string]*Parameter
}

// Validate validates the tool specification.
func (s *ToolSpec) Validate() error {
	eb := goerr.NewBuilder(goerr.V("tool", s.Name))
	if s.Name == "" {
		return eb.Wrap(ErrInvalidTool, "name is required")
	}

	for name, param := range s.Parameters {
		if err := param.Validate(); err != nil {
			return eb.Wrap(ErrInvalidTool, "invalid parameter", goerr.V("parameter", name))
		}
	}

	return nil
}

// Required returns the names of required parameters in lexical order.
func (s *ToolSpec) Required() []string {
	return CollectRequiredFields(s.Parameters)
}

// JSONSchema returns the JSON Schema of the tool arguments as a plain map,
// which is the form every provider SDK accepts.
func (s *ToolSpec) JSONSchema() map[string]any {
	properties := make(map[string]any, len(s.Parameters))
	for name, param := range s.Parameters {
		properties[name] = param.JSONSchema()
	}

	schema := map[string]any{
		"type":       string(TypeObject),
		"properties": properties,
	}
	if required := s.Required(); len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// ParameterType is the type of a parameter.
type ParameterType string

const (
	TypeString  ParameterType = "string"
	TypeNumber  ParameterType = "number"
	TypeInteger ParameterType = "integer"
	TypeBoolean ParameterType = "boolean"
	TypeArray   ParameterType = "array"
	TypeObject  ParameterType = "object"
)

// Parameter is a parameter of a tool.
type Parameter struct {
	// Title is an optional display name.
	Title string

	Type ParameterType

	Description string

	// Required marks the parameter as mandatory in its parent object.
	Required bool

	// Enum restricts a string parameter to the listed values.
	Enum []string

	// Properties is used for object type parameters.
	Properties map[string]*Parameter

	// Items is used for array type parameters.
	Items *Parameter

	// String constraints
	MinLength *int
	MaxLength *int
	Pattern   string

	// Array constraints
	MinItems *int
	MaxItems *int
}

// Validate validates the parameter.
func (p *Parameter) Validate() error {
	eb := goerr.NewBuilder(goerr.V("type", p.Type))

	if p.Type == "" {
		return eb.Wrap(ErrInvalidParameter, "type is required")
	}

	switch p.Type {
	case TypeObject:
		if p.Properties == nil {
			return eb.Wrap(ErrInvalidParameter, "properties is required for object type")
		}
		for name, prop := range p.Properties {
			if err := prop.Validate(); err != nil {
				return eb.Wrap(ErrInvalidParameter, "invalid property", goerr.V("property", name))
			}
		}

	case TypeArray:
		if p.Items == nil {
			return eb.Wrap(ErrInvalidParameter, "items is required for array type")
		}
		if err := p.Items.Validate(); err != nil {
			return eb.Wrap(ErrInvalidParameter, "invalid items")
		}
		if p.MinItems != nil && p.MaxItems != nil && *p.MinItems > *p.MaxItems {
			return eb.Wrap(ErrInvalidParameter, "minItems must be less than or equal to maxItems")
		}

	case TypeString:
		if p.MinLength != nil && p.MaxLength != nil && *p.MinLength > *p.MaxLength {
			return eb.Wrap(ErrInvalidParameter, "minLength must be less than or equal to maxLength")
		}
		if p.Pattern != "" {
			if _, err := regexp.Compile(p.Pattern); err != nil {
				return eb.Wrap(ErrInvalidParameter, "invalid pattern", goerr.V("pattern", p.Pattern))
			}
		}
	}

	return nil
}

// JSONSchema converts the parameter to a JSON Schema map.
func (p *Parameter) JSONSchema() map[string]any {
	schema := map[string]any{
		"type": string(p.Type),
	}

	if p.Title != "" {
		schema["title"] = p.Title
	}
	if p.Description != "" {
		schema["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		schema["enum"] = p.Enum
	}

	if p.Type == TypeObject && p.Properties != nil {
		props := make(map[string]any, len(p.Properties))
		for name, prop := range p.Properties {
			props[name] = prop.JSONSchema()
		}
		schema["properties"] = props
		if required := CollectRequiredFields(p.Properties); len(required) > 0 {
			schema["required"] = required
		}
	}

	if p.Type == TypeArray && p.Items != nil {
		schema["items"] = p.Items.JSONSchema()
	}

	if p.MinLength != nil {
		schema["minLength"] = *p.MinLength
	}
	if p.MaxLength != nil {
		schema["maxLength"] = *p.MaxLength
	}
	if p.Pattern != "" {
		schema["pattern"] = p.Pattern
	}
	if p.MinItems != nil {
		schema["minItems"] = *p.MinItems
	}
	if p.MaxItems != nil {
		schema["maxItems"] = *p.MaxItems
	}

	return schema
}

// CollectRequiredFields returns the names of required properties, sorted so
// that generated schemas are stable across runs.
func CollectRequiredFields(properties map[string]*Parameter) []string {
	var required []string
	for name, prop := range properties {
		if prop.Required {
			required = append(required, name)
		}
	}
	sort.Strings(required)
	return required
}
