package tripbook_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/tripbook"
)

func TestFormatList(t *testing.T) {
	t.Run("items in order", func(t *testing.T) {
		gt.Equal(t, tripbook.FormatList([]string{"tent", "water"}), "<ul><li>tent</li><li>water</li></ul>")
	})

	t.Run("empty list", func(t *testing.T) {
		gt.Equal(t, tripbook.FormatList([]string{}), "<ul></ul>")
		gt.Equal(t, tripbook.FormatList(nil), "<ul></ul>")
	})

	t.Run("no escaping", func(t *testing.T) {
		gt.Equal(t, tripbook.FormatList([]string{"<b>bear</b> spray & bells"}), "<ul><li><b>bear</b> spray & bells</li></ul>")
	})

	t.Run("item count", func(t *testing.T) {
		items := []string{"a", "b", "c", "d", "e"}
		out := tripbook.FormatList(items)
		gt.Equal(t, strings.Count(out, "<li>"), len(items))
		gt.Equal(t, strings.Count(out, "</li>"), len(items))
	})
}

func TestNormalize(t *testing.T) {
	fields := &tripbook.HandbookFields{
		EquipmentList:      []string{"tent", "water"},
		OverviewText:       "Three days among tidewater glaciers.",
		ExpectedConditions: "Cool, wet, 10-15C.",
		DangersList:        []string{},
		SafetyTips:         []string{"file a trip plan", "carry bear spray", "watch the tides"},
		MapImageURL:        "https://example.com/glacier-bay.png",
		MapCaption:         "Glacier Bay",
	}

	content := tripbook.Normalize(fields)

	gt.Equal(t, content.EquipmentList, "<ul><li>tent</li><li>water</li></ul>")
	gt.Equal(t, content.DangersList, "<ul></ul>")
	gt.Equal(t, strings.Count(content.SafetyTips, "<li>"), 3)

	gt.Equal(t, content.OverviewText, fields.OverviewText)
	gt.Equal(t, content.ExpectedConditions, fields.ExpectedConditions)
	gt.Equal(t, content.MapImageURL, fields.MapImageURL)
	gt.Equal(t, content.MapCaption, fields.MapCaption)

	m := content.Map()
	gt.Equal(t, len(m), len(tripbook.ContentFields()))
	for _, name := range tripbook.ContentFields() {
		_, ok := m[name]
		gt.True(t, ok)
	}
	gt.Equal(t, m["equipment_list"], content.EquipmentList)
	gt.Equal(t, m["map_caption"], "Glacier Bay")
}
