// Package pdf lays out a rendered handbook HTML document as a PDF.
package pdf

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/phpdave11/gofpdf"
	"golang.org/x/net/html"
)

const (
	lineHeight = 6.0
	listIndent = 8.0
)

// Writer converts HTML documents to PDF. The supported subset is what the
// handbook template produces: headings, paragraphs, lists, inline emphasis,
// links, images and line breaks.
type Writer struct {
	fontFamily  string
	pageSize    string
	pageNumbers bool
	compress    bool
}

// Option configures a Writer.
type Option func(*Writer)

// WithPageNumbers adds a "Page n of m" footer to every page.
func WithPageNumbers(enabled bool) Option {
	return func(x *Writer) {
		x.pageNumbers = enabled
	}
}

// WithFontFamily sets the core font. Default: Helvetica
func WithFontFamily(family string) Option {
	return func(x *Writer) {
		x.fontFamily = family
	}
}

// WithPageSize sets the page size, e.g. "A4" or "Letter". Default: A4
func WithPageSize(size string) Option {
	return func(x *Writer) {
		x.pageSize = size
	}
}

// WithCompression toggles stream compression. Default: enabled
func WithCompression(enabled bool) Option {
	return func(x *Writer) {
		x.compress = enabled
	}
}

// New creates a Writer.
func New(options ...Option) *Writer {
	x := &Writer{
		fontFamily: "Helvetica",
		pageSize:   "A4",
		compress:   true,
	}
	for _, opt := range options {
		opt(x)
	}
	return x
}

// Write parses htmlDoc and writes the PDF to w.
func (x *Writer) Write(ctx context.Context, htmlDoc string, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return goerr.Wrap(err, "PDF rendering canceled")
	}

	doc, err := html.Parse(strings.NewReader(htmlDoc))
	if err != nil {
		return goerr.Wrap(err, "failed to parse HTML")
	}

	pdf := gofpdf.New("P", "mm", x.pageSize, "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetCompression(x.compress)

	if x.pageNumbers {
		pdf.AliasNbPages("")
		pdf.SetFooterFunc(func() {
			pdf.SetY(-15)
			pdf.SetFont(x.fontFamily, "I", 8)
			pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()),
				"", 0, "C", false, 0, "")
		})
	}

	r := &renderer{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		family: x.fontFamily,
		size:   11,
	}

	if title := findTitle(doc); title != "" {
		pdf.SetTitle(title, true)
	}

	pdf.AddPage()
	pdf.SetFont(r.family, "", r.size)
	r.renderChildren(doc)

	if err := pdf.Output(w); err != nil {
		return goerr.Wrap(err, "failed to write PDF")
	}
	return nil
}

// renderer holds the layout state of a single document.
type renderer struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	family string
	style  string
	size   float64
}

func (r *renderer) renderNode(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		text := collapseSpace(n.Data)
		if strings.TrimSpace(text) == "" {
			return
		}
		if r.atLineStart() {
			text = strings.TrimLeft(text, " ")
		}
		r.pdf.Write(lineHeight, r.tr(text))

	case html.ElementNode:
		r.renderElement(n)

	case html.DocumentNode:
		r.renderChildren(n)
	}
}

func (r *renderer) renderElement(n *html.Node) {
	switch n.Data {
	case "head", "script", "style", "title":
		return

	case "h1":
		r.heading(n, 20)
	case "h2":
		r.heading(n, 16)
	case "h3":
		r.heading(n, 14)
	case "h4":
		r.heading(n, 12)

	case "p", "figure", "figcaption", "div":
		r.newLine()
		r.renderChildren(n)
		r.newLine()
		r.pdf.Ln(2)

	case "b", "strong":
		r.withStyle("B", n)
	case "em", "i":
		r.withStyle("I", n)

	case "a":
		text := collapseSpace(getTextContent(n))
		href := getAttr(n, "href")
		if href == "" {
			r.renderChildren(n)
			return
		}
		r.pdf.WriteLinkString(lineHeight, r.tr(text), href)
		if strings.TrimSpace(text) != href {
			r.pdf.Write(lineHeight, r.tr(" ("+href+")"))
		}

	case "ul":
		r.list(n, false)
	case "ol":
		r.list(n, true)

	case "img":
		r.newLine()
		alt := getAttr(n, "alt")
		src := getAttr(n, "src")
		r.withFont("I", func() {
			if alt != "" {
				r.pdf.Write(lineHeight, r.tr("["+alt+"] "))
			}
			r.pdf.Write(lineHeight, r.tr(src))
		})
		r.newLine()

	case "br":
		r.pdf.Ln(lineHeight)

	default:
		r.renderChildren(n)
	}
}

func (r *renderer) renderChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.renderNode(c)
	}
}

func (r *renderer) heading(n *html.Node, size float64) {
	r.newLine()
	r.pdf.Ln(size / 3)

	prevSize := r.size
	r.size = size
	r.withStyle("B", n)
	r.size = prevSize
	r.pdf.SetFont(r.family, r.style, r.size)

	r.pdf.Ln(size/2 + 2)
}

func (r *renderer) list(n *html.Node, ordered bool) {
	r.newLine()

	left, _, _, _ := r.pdf.GetMargins()
	r.pdf.SetLeftMargin(left + listIndent)
	defer func() {
		r.newLine()
		r.pdf.SetLeftMargin(left)
		r.pdf.SetX(left)
	}()

	idx := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		idx++

		r.newLine()
		r.pdf.SetX(left + listIndent)
		if ordered {
			r.pdf.Write(lineHeight, fmt.Sprintf("%d. ", idx))
		} else {
			r.pdf.Write(lineHeight, r.tr("• "))
		}
		r.renderChildren(c)
	}
}

func (r *renderer) withStyle(style string, n *html.Node) {
	r.withFont(style, func() { r.renderChildren(n) })
}

func (r *renderer) withFont(style string, fn func()) {
	prev := r.style
	if !strings.Contains(r.style, style) {
		r.style += style
	}
	r.pdf.SetFont(r.family, r.style, r.size)
	fn()
	r.style = prev
	r.pdf.SetFont(r.family, r.style, r.size)
}

func (r *renderer) atLineStart() bool {
	left, _, _, _ := r.pdf.GetMargins()
	return r.pdf.GetX() <= left+0.01
}

func (r *renderer) newLine() {
	if !r.atLineStart() {
		r.pdf.Ln(lineHeight)
	}
}
