// Package render turns digest text into display-ready paragraphs.
//
// Digest text comes from an external generator and may contain two inline
// syntaxes: Markdown links "[label](https://...)" and citation markers "[n]"
// that refer to the n-th entry of the digest's source list. Render resolves
// both into typed segments; everything else stays literal text that the
// display layer must show without interpreting it.
//
// Render never fails. Malformed markers stay literal and out-of-range
// citations fall back to the first source.
package render

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/abelbrown/infopulse/internal/model"
)

// Kind identifies a segment type.
type Kind int

const (
	// PlainText is literal text.
	PlainText Kind = iota
	// Hyperlink is an external http(s) link; Text holds the label.
	Hyperlink
	// Citation is a badge pointing at Source; Text holds the digits as written.
	Citation
)

func (k Kind) String() string {
	switch k {
	case PlainText:
		return "text"
	case Hyperlink:
		return "link"
	case Citation:
		return "citation"
	}
	return "unknown"
}

// Segment is one inline run of a text paragraph.
type Segment struct {
	Kind   Kind
	Text   string
	URL    string           // Hyperlink only
	Number int              // Citation only; 0 when the digits overflow int
	Source model.SourceLink // Citation only
}

// Paragraph is either a vertical spacer or a run of segments.
type Paragraph struct {
	Spacer   bool
	Segments []Segment
}

// Text builds a PlainText segment.
func Text(s string) Segment {
	return Segment{Kind: PlainText, Text: s}
}

// Link builds a Hyperlink segment.
func Link(label, url string) Segment {
	return Segment{Kind: Hyperlink, Text: label, URL: url}
}

// Cite builds a Citation segment.
func Cite(n int, src model.SourceLink) Segment {
	return Segment{Kind: Citation, Text: strconv.Itoa(n), Number: n, Source: src}
}

var (
	// linkRe matches [label](url). The url must use http or https and ends at
	// the first ")" not preceded by a backslash.
	linkRe = regexp.MustCompile(`\[([^\]]+)\]\((https?://(?:\\[^\s\x00-\x1f\x7f]|[^)\\\s\x00-\x1f\x7f])+)\)`)

	urlUnescaper = strings.NewReplacer(`\(`, "(", `\)`, ")")

	citationRe = regexp.MustCompile(`\[(\d+)\]`)
)

// Render splits content into paragraphs, one per "\n"-separated line.
// Whitespace-only lines become spacers.
func Render(content string, sources []model.SourceLink) []Paragraph {
	lines := strings.Split(content, "\n")
	paragraphs := make([]Paragraph, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			paragraphs = append(paragraphs, Paragraph{Spacer: true})
			continue
		}
		paragraphs = append(paragraphs, Paragraph{Segments: Line(line, sources)})
	}
	return paragraphs
}

// Line renders a single line. Links are resolved first, so a citation-like
// marker inside a link is never processed twice.
func Line(line string, sources []model.SourceLink) []Segment {
	var segs []Segment
	last := 0
	for _, m := range linkRe.FindAllStringSubmatchIndex(line, -1) {
		if m[0] > last {
			segs = appendCitations(segs, line[last:m[0]], sources)
		}
		label := line[m[2]:m[3]]
		url := urlUnescaper.Replace(line[m[4]:m[5]])
		segs = append(segs, Link(label, url))
		last = m[1]
	}
	if last < len(line) {
		segs = appendCitations(segs, line[last:], sources)
	}
	return segs
}

// appendCitations scans a plain run for [n] markers.
func appendCitations(segs []Segment, text string, sources []model.SourceLink) []Segment {
	last := 0
	for _, m := range citationRe.FindAllStringSubmatchIndex(text, -1) {
		digits := text[m[2]:m[3]]
		n, src, ok := resolve(digits, sources)
		if !ok {
			// No sources at all: the marker stays literal and joins the
			// surrounding run.
			continue
		}
		if m[0] > last {
			segs = appendText(segs, text[last:m[0]])
		}
		segs = append(segs, Segment{Kind: Citation, Text: digits, Number: n, Source: src})
		last = m[1]
	}
	if last < len(text) {
		segs = appendText(segs, text[last:])
	}
	return segs
}

// resolve parses the 1-based citation digits and maps them to a source.
// Anything that is not a valid index falls back to the first source when one
// exists. Digits that overflow int parse as 0.
func resolve(digits string, sources []model.SourceLink) (int, model.SourceLink, bool) {
	n, err := strconv.Atoi(digits)
	if err != nil {
		n = 0
	}
	if len(sources) == 0 {
		return n, model.SourceLink{}, false
	}
	if n < 1 || n > len(sources) {
		return n, sources[0], true
	}
	return n, sources[n-1], true
}

// appendText adds literal text, merging with a preceding text segment.
func appendText(segs []Segment, s string) []Segment {
	if s == "" {
		return segs
	}
	if n := len(segs); n > 0 && segs[n-1].Kind == PlainText {
		segs[n-1].Text += s
		return segs
	}
	return append(segs, Text(s))
}

// PlainString flattens paragraphs back to text. Links contribute their
// label, citations their marker, spacers an empty line.
func PlainString(paragraphs []Paragraph) string {
	lines := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		if p.Spacer {
			continue
		}
		var b strings.Builder
		for _, s := range p.Segments {
			switch s.Kind {
			case Citation:
				b.WriteString("[" + s.Text + "]")
			default:
				b.WriteString(s.Text)
			}
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

// Citations returns the citation segments of all paragraphs in order.
func Citations(paragraphs []Paragraph) []Segment {
	var out []Segment
	for _, p := range paragraphs {
		for _, s := range p.Segments {
			if s.Kind == Citation {
				out = append(out, s)
			}
		}
	}
	return out
}
