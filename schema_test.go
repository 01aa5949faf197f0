package tripbook_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/tripbook"
)

func TestContentSchema(t *testing.T) {
	spec := tripbook.ContentSchema()
	gt.NoError(t, spec.Validate())
	gt.Equal(t, spec.Name, "generate_handbook_content")

	fields := tripbook.ContentFields()
	gt.Equal(t, fields, []string{
		"equipment_list",
		"overview_text",
		"expected_conditions",
		"dangers_list",
		"safety_tips",
		"map_image_url",
		"map_caption",
	})

	gt.A(t, spec.Required()).Length(7)
	for _, name := range fields {
		param, ok := spec.Parameters[name]
		gt.True(t, ok)
		gt.True(t, param.Required)

		if tripbook.IsMarkupField(name) {
			gt.Equal(t, param.Type, tripbook.TypeArray)
			gt.Equal(t, param.Items.Type, tripbook.TypeString)
		} else {
			gt.Equal(t, param.Type, tripbook.TypeString)
		}
	}
}

func TestContentFieldsIsCopy(t *testing.T) {
	fields := tripbook.ContentFields()
	fields[0] = "modified"
	gt.Equal(t, tripbook.ContentFields()[0], "equipment_list")
}

func TestFieldParameters(t *testing.T) {
	type gear struct {
		Name     string   `json:"name,omitempty" description:"gear name" required:"true"`
		Tags     []string `json:"tags"`
		Plain    string
		Internal string `json:"-"`
		hidden   string
	}

	t.Run("string and string list fields", func(t *testing.T) {
		params, err := tripbook.FieldParameters(reflect.TypeOf(gear{}))
		gt.NoError(t, err)
		gt.Equal(t, len(params), 3)
		gt.Equal(t, params["name"].Type, tripbook.TypeString)
		gt.Equal(t, params["name"].Description, "gear name")
		gt.True(t, params["name"].Required)
		gt.Equal(t, params["tags"].Type, tripbook.TypeArray)
		gt.Equal(t, params["tags"].Items.Type, tripbook.TypeString)
		gt.False(t, params["tags"].Required)
		gt.Equal(t, params["Plain"].Type, tripbook.TypeString)
	})

	t.Run("unsupported field type", func(t *testing.T) {
		type bad struct {
			Days int `json:"days"`
		}
		_, err := tripbook.FieldParameters(reflect.TypeOf(bad{}))
		gt.True(t, errors.Is(err, tripbook.ErrUnsupportedType))
	})
}
