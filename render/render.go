// Package render fills the handbook HTML template with generated content.
package render

import (
	_ "embed"
	"errors"
	"html/template"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tripbook"
)

//go:embed templates/handbook.html
var defaultTemplate string

// ErrTemplate is returned when the template cannot be loaded, parsed or
// executed.
var ErrTemplate = errors.New("template error")

// Handbook is the data of a single rendering: the trip and its content.
type Handbook struct {
	Trip    tripbook.TripParameters
	Content *tripbook.HandbookContent
}

// Data returns the template variables of h. Trip values are exposed as
// location, season, days and number_of_people; content values use their
// wire names. List fragments are marked safe so they are emitted verbatim,
// everything else is escaped by the template engine.
func (h *Handbook) Data() map[string]any {
	data := map[string]any{
		"location":         h.Trip.Location,
		"season":           h.Trip.Season,
		"days":             h.Trip.DurationDays,
		"number_of_people": h.Trip.GroupSize,
	}

	if h.Content == nil {
		return data
	}

	for key, value := range h.Content.Map() {
		if tripbook.IsMarkupField(key) {
			data[key] = template.HTML(value)
		} else {
			data[key] = value
		}
	}
	return data
}

// Renderer renders handbooks with a parsed template.
type Renderer struct {
	tmpl *template.Template
}

type config struct {
	name string
	text string
	path string
}

// Option configures a Renderer.
type Option func(*config)

// WithTemplateFile loads the template from path instead of the embedded
// default.
func WithTemplateFile(path string) Option {
	return func(c *config) {
		c.path = path
	}
}

// WithTemplate uses text as the template source.
func WithTemplate(text string) Option {
	return func(c *config) {
		c.name = "custom"
		c.text = text
	}
}

// New parses the template. A template that refers to an unknown variable
// fails at Render time.
func New(options ...Option) (*Renderer, error) {
	cfg := &config{
		name: "handbook",
		text: defaultTemplate,
	}
	for _, opt := range options {
		opt(cfg)
	}

	if cfg.path != "" {
		raw, err := os.ReadFile(cfg.path)
		if err != nil {
			return nil, goerr.Wrap(ErrTemplate, "failed to read template file",
				goerr.V("path", cfg.path), goerr.V("cause", err.Error()))
		}
		cfg.name = cfg.path
		cfg.text = string(raw)
	}

	tmpl, err := template.New(cfg.name).Option("missingkey=error").Parse(cfg.text)
	if err != nil {
		return nil, goerr.Wrap(ErrTemplate, "failed to parse template",
			goerr.V("name", cfg.name), goerr.V("cause", err.Error()))
	}

	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the filled template for h to w.
func (r *Renderer) Render(w io.Writer, h *Handbook) error {
	if err := r.tmpl.Execute(w, h.Data()); err != nil {
		return goerr.Wrap(ErrTemplate, "failed to execute template",
			goerr.V("name", r.tmpl.Name()), goerr.V("cause", err.Error()))
	}
	return nil
}
