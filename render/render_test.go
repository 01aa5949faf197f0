package render_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/tripbook"
	"github.com/m-mizutani/tripbook/render"
)

func glacierBay() *render.Handbook {
	return &render.Handbook{
		Trip: tripbook.TripParameters{
			Season:       "Summer",
			Location:     "Glacier Bay National Park, Alaska",
			DurationDays: 3,
			GroupSize:    4,
		},
		Content: tripbook.Normalize(&tripbook.HandbookFields{
			EquipmentList:      []string{"tent", "water"},
			OverviewText:       "Cold water & tidewater glaciers",
			ExpectedConditions: "Rain, 10C",
			DangersList:        []string{"hypothermia"},
			SafetyTips:         []string{"<b>file</b> a trip plan"},
			MapImageURL:        "https://example.com/map.png",
			MapCaption:         "Park <overview>",
		}),
	}
}

func TestRenderDefaultTemplate(t *testing.T) {
	r, err := render.New()
	gt.NoError(t, err)

	var buf bytes.Buffer
	gt.NoError(t, r.Render(&buf, glacierBay()))
	out := buf.String()

	gt.S(t, out).Contains("Summer Survival Handbook: Glacier Bay National Park, Alaska")
	gt.S(t, out).Contains("3 days")
	gt.S(t, out).Contains("4 people")

	t.Run("list markup is emitted verbatim", func(t *testing.T) {
		gt.S(t, out).Contains("<ul><li>tent</li><li>water</li></ul>")
		gt.S(t, out).Contains("<ul><li>hypothermia</li></ul>")
		gt.S(t, out).Contains("<li><b>file</b> a trip plan</li>")
	})

	t.Run("scalars are escaped", func(t *testing.T) {
		gt.S(t, out).Contains("Cold water &amp; tidewater glaciers")
		gt.S(t, out).Contains("Park &lt;overview&gt;")
		gt.False(t, strings.Contains(out, "<overview>"))
	})

	gt.S(t, out).Contains(`src="https://example.com/map.png"`)
}

func TestRenderTemplateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mini.html")
	gt.NoError(t, os.WriteFile(path, []byte(`{{.location}}|{{.days}}|{{.equipment_list}}`), 0600))

	r, err := render.New(render.WithTemplateFile(path))
	gt.NoError(t, err)

	var buf bytes.Buffer
	gt.NoError(t, r.Render(&buf, glacierBay()))
	gt.Equal(t, buf.String(), "Glacier Bay National Park, Alaska|3|<ul><li>tent</li><li>water</li></ul>")
}

func TestRenderErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := render.New(render.WithTemplateFile(filepath.Join(t.TempDir(), "none.html")))
		gt.True(t, errors.Is(err, render.ErrTemplate))
	})

	t.Run("parse error", func(t *testing.T) {
		_, err := render.New(render.WithTemplate(`{{.location`))
		gt.True(t, errors.Is(err, render.ErrTemplate))
	})

	t.Run("unknown variable", func(t *testing.T) {
		r, err := render.New(render.WithTemplate(`{{.altitude}}`))
		gt.NoError(t, err)
		err = r.Render(&bytes.Buffer{}, glacierBay())
		gt.True(t, errors.Is(err, render.ErrTemplate))
	})
}

func TestHandbookData(t *testing.T) {
	data := glacierBay().Data()
	gt.Equal(t, len(data), 11)
	gt.Equal(t, data["number_of_people"], any(4))
	gt.Equal(t, data["map_caption"], any("Park <overview>"))

	t.Run("trip only", func(t *testing.T) {
		h := &render.Handbook{Trip: tripbook.TripParameters{Season: "Winter"}}
		gt.Equal(t, len(h.Data()), 4)
	})
}
