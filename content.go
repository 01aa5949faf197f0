package tripbook

import (
	"strings"
)

// HandbookFields is the validated argument payload of the content tool. The
// struct tags define ContentSchema: field order, wire names and descriptions.
type HandbookFields struct {
	EquipmentList      []string `json:"equipment_list" description:"Equipment the group should bring" required:"true"`
	OverviewText       string   `json:"overview_text" description:"Overview of the expedition and the destination" required:"true"`
	ExpectedConditions string   `json:"expected_conditions" description:"Weather and terrain conditions expected during the trip" required:"true"`
	DangersList        []string `json:"dangers_list" description:"Dangers the group may face" required:"true"`
	SafetyTips         []string `json:"safety_tips" description:"Practical safety tips for the trip" required:"true"`
	MapImageURL        string   `json:"map_image_url" description:"URL of a map image of the destination" required:"true"`
	MapCaption         string   `json:"map_caption" description:"Caption for the map image" required:"true"`
}

// HandbookContent is the renderable record produced from HandbookFields.
// The three list fields hold <ul> markup fragments.
type HandbookContent struct {
	EquipmentList      string
	OverviewText       string
	ExpectedConditions string
	DangersList        string
	SafetyTips         string
	MapImageURL        string
	MapCaption         string
}

// Map returns the content keyed by the ContentSchema wire names, the shape
// the template collaborator consumes.
func (x *HandbookContent) Map() map[string]string {
	return map[string]string{
		"equipment_list":      x.EquipmentList,
		"overview_text":       x.OverviewText,
		"expected_conditions": x.ExpectedConditions,
		"dangers_list":        x.DangersList,
		"safety_tips":         x.SafetyTips,
		"map_image_url":       x.MapImageURL,
		"map_caption":         x.MapCaption,
	}
}

// IsMarkupField reports whether the named field holds a list markup fragment
// rather than plain text.
func IsMarkupField(name string) bool {
	switch name {
	case "equipment_list", "dangers_list", "safety_tips":
		return true
	}
	return false
}

// Normalize converts validated fields into HandbookContent. It never fails:
// validation has already guaranteed every field is present.
func Normalize(fields *HandbookFields) *HandbookContent {
	return &HandbookContent{
		EquipmentList:      FormatList(fields.EquipmentList),
		OverviewText:       fields.OverviewText,
		ExpectedConditions: fields.ExpectedConditions,
		DangersList:        FormatList(fields.DangersList),
		SafetyTips:         FormatList(fields.SafetyTips),
		MapImageURL:        fields.MapImageURL,
		MapCaption:         fields.MapCaption,
	}
}

// FormatList renders items as an unordered list, one <li> per item in order.
// Items are embedded verbatim without escaping; sanitize untrusted input
// before calling.
func FormatList(items []string) string {
	var b strings.Builder
	b.WriteString("<ul>")
	for _, item := range items {
		b.WriteString("<li>")
		b.WriteString(item)
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}
