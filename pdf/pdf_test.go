package pdf_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/tripbook/pdf"
	"golang.org/x/net/html"
)

const handbookHTML = `<!DOCTYPE html>
<html><head><title>Summer Handbook</title><style>body { color: red; }</style><script>alert(1)</script></head>
<body>
<h1>Glacier Bay</h1>
<p>Overview of the <strong>park</strong> and <em>fjords</em>.<br>Second line.</p>
<h2>Equipment</h2>
<ul><li>tent</li><li>water</li></ul>
<ol><li>first</li><li>second</li></ol>
<p>See <a href="https://www.nps.gov/glba/">park service</a>.</p>
<figure><img src="https://example.com/map.png" alt="Map"><figcaption>Café map</figcaption></figure>
</body></html>`

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	err := pdf.New(pdf.WithCompression(false)).Write(t.Context(), handbookHTML, &buf)
	gt.NoError(t, err)

	out := buf.String()
	gt.True(t, strings.HasPrefix(out, "%PDF-"))
	gt.S(t, out).Contains("Glacier Bay")
	gt.S(t, out).Contains("tent")
	gt.S(t, out).Contains("https://example.com/map.png")
	gt.S(t, out).Contains("https://www.nps.gov/glba/")

	t.Run("script and style are skipped", func(t *testing.T) {
		gt.False(t, strings.Contains(out, "alert(1)"))
		gt.False(t, strings.Contains(out, "color: red"))
	})
}

func TestWriteWithPageNumbers(t *testing.T) {
	var buf bytes.Buffer
	err := pdf.New(pdf.WithPageNumbers(true), pdf.WithCompression(false), pdf.WithPageSize("Letter")).
		Write(t.Context(), handbookHTML, &buf)
	gt.NoError(t, err)
	gt.S(t, buf.String()).Contains("Page 1 of 1")
}

func TestWriteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	gt.Error(t, pdf.New().Write(ctx, handbookHTML, &buf))
	gt.Equal(t, buf.Len(), 0)
}

func TestCollapseSpace(t *testing.T) {
	testCases := map[string]struct {
		input string
		want  string
	}{
		"empty":          {"", ""},
		"only spaces":    {" \n\t ", " "},
		"inner runs":     {"a  b\n\nc", "a b c"},
		"keeps boundary": {"\n  park and  ", " park and "},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			gt.Equal(t, pdf.CollapseSpace(tc.input), tc.want)
		})
	}
}

func TestFindTitle(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(handbookHTML))
	gt.NoError(t, err)
	gt.Equal(t, pdf.FindTitle(doc), "Summer Handbook")

	doc, err = html.Parse(strings.NewReader("<p>no title</p>"))
	gt.NoError(t, err)
	gt.Equal(t, pdf.FindTitle(doc), "")
}
