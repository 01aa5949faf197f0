package tripbook

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const (
	// ContentToolName is the name of the single tool offered to the model.
	ContentToolName = "generate_handbook_content"

	contentToolDescription = "Generates the content for a survival handbook."
	contentSchemaURL       = ContentToolName + ".json"
)

var (
	contentFields    = fieldsOf(reflect.TypeOf(HandbookFields{}))
	contentSchema    = mustContentSchema()
	contentValidator = mustCompile(contentSchema)
)

// ContentSchema returns the fixed descriptor of the structured output the
// model must produce. The returned spec is shared process-wide and must not
// be modified.
func ContentSchema() *ToolSpec {
	return contentSchema
}

// ContentFields returns the wire names of the ContentSchema fields in their
// declared order.
func ContentFields() []string {
	out := make([]string, len(contentFields))
	copy(out, contentFields)
	return out
}

func mustContentSchema() *ToolSpec {
	params, err := fieldParameters(reflect.TypeOf(HandbookFields{}))
	if err != nil {
		panic(goerr.Wrap(err, "failed to build content schema"))
	}

	spec := &ToolSpec{
		Name:        ContentToolName,
		Description: contentToolDescription,
		Parameters:  params,
	}
	if err := spec.Validate(); err != nil {
		panic(goerr.Wrap(err, "content schema is invalid"))
	}
	return spec
}

func mustCompile(spec *ToolSpec) *jsonschema.Schema {
	raw, err := json.Marshal(spec.JSONSchema())
	if err != nil {
		panic(goerr.Wrap(err, "failed to marshal content schema"))
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		panic(goerr.Wrap(err, "failed to decode content schema"))
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(contentSchemaURL, doc); err != nil {
		panic(goerr.Wrap(err, "failed to add content schema"))
	}
	sch, err := c.Compile(contentSchemaURL)
	if err != nil {
		panic(goerr.Wrap(err, "failed to compile content schema"))
	}
	return sch
}

// fieldsOf returns the wire names of the exported fields of struct type t
// in declaration order. Fields tagged json:"-" are skipped.
func fieldsOf(t reflect.Type) []string {
	var names []string
	for i := 0; i < t.NumField(); i++ {
		if name, ok := fieldName(t.Field(i)); ok {
			names = append(names, name)
		}
	}
	return names
}

func fieldName(field reflect.StructField) (string, bool) {
	if !field.IsExported() {
		return "", false
	}
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	switch name {
	case "-":
		return "", false
	case "":
		return field.Name, true
	}
	return name, true
}

// fieldParameters builds tool parameters from the fields of struct type t.
// Only string and []string fields are supported. The description and
// required tags set Description and Required.
func fieldParameters(t reflect.Type) (map[string]*Parameter, error) {
	params := make(map[string]*Parameter)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, ok := fieldName(field)
		if !ok {
			continue
		}

		param := &Parameter{
			Description: field.Tag.Get("description"),
			Required:    field.Tag.Get("required") == "true",
		}

		switch {
		case field.Type.Kind() == reflect.String:
			param.Type = TypeString
		case field.Type.Kind() == reflect.Slice && field.Type.Elem().Kind() == reflect.String:
			param.Type = TypeArray
			param.Items = &Parameter{Type: TypeString}
		default:
			return nil, goerr.Wrap(ErrUnsupportedType, "cannot convert field",
				goerr.V("field", field.Name), goerr.V("type", field.Type.String()))
		}

		params[name] = param
	}
	return params, nil
}
