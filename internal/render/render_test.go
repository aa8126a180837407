package render

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/abelbrown/infopulse/internal/model"
)

var (
	srcA = model.SourceLink{Title: "A", URL: "u1"}
	srcB = model.SourceLink{Title: "B", URL: "u2"}
)

func text(segs ...Segment) Paragraph {
	return Paragraph{Segments: segs}
}

var spacer = Paragraph{Spacer: true}

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		content string
		sources []model.SourceLink
		want    []Paragraph
	}{
		{
			name:    "citations resolve in order",
			content: "See [1] and [2].",
			sources: []model.SourceLink{srcA, srcB},
			want: []Paragraph{text(
				Text("See "), Cite(1, srcA), Text(" and "), Cite(2, srcB), Text("."),
			)},
		},
		{
			name:    "out of range falls back to first source",
			content: "See [5].",
			sources: []model.SourceLink{srcA},
			want:    []Paragraph{text(Text("See "), Cite(5, srcA), Text("."))},
		},
		{
			name:    "zero index falls back to first source",
			content: "[0]",
			sources: []model.SourceLink{srcA, srcB},
			want:    []Paragraph{text(Cite(0, srcA))},
		},
		{
			name:    "no sources keeps marker literal",
			content: "See [1].",
			sources: nil,
			want:    []Paragraph{text(Text("See [1]."))},
		},
		{
			name:    "link takes precedence over citation",
			content: "[Example](https://example.com) and [1]",
			sources: []model.SourceLink{srcA},
			want: []Paragraph{text(
				Link("Example", "https://example.com"), Text(" and "), Cite(1, srcA),
			)},
		},
		{
			name:    "numeric link label is not a citation",
			content: "[1](http://example.com/x)",
			sources: []model.SourceLink{srcA},
			want:    []Paragraph{text(Link("1", "http://example.com/x"))},
		},
		{
			name:    "spacer between paragraphs",
			content: "Hello\n\nWorld",
			want:    []Paragraph{text(Text("Hello")), spacer, text(Text("World"))},
		},
		{
			name:    "whitespace-only line is a spacer",
			content: "a\n \t \nb",
			want:    []Paragraph{text(Text("a")), spacer, text(Text("b"))},
		},
		{
			name:    "empty content is a single spacer",
			content: "",
			want:    []Paragraph{spacer},
		},
		{
			name:    "non-http scheme is plain text",
			content: "[click](javascript:alert(1))",
			sources: nil,
			want:    []Paragraph{text(Text("[click](javascript:alert(1))"))},
		},
		{
			name:    "non-http scheme with sources still never links",
			content: "[x](ftp://host/file)",
			sources: []model.SourceLink{srcA},
			want:    []Paragraph{text(Text("[x](ftp://host/file)"))},
		},
		{
			name:    "malformed brackets pass through",
			content: "[abc] [] [1a]",
			sources: []model.SourceLink{srcA},
			want:    []Paragraph{text(Text("[abc] [] [1a]"))},
		},
		{
			name:    "adjacent markers",
			content: "fact[1][2]",
			sources: []model.SourceLink{srcA, srcB},
			want:    []Paragraph{text(Text("fact"), Cite(1, srcA), Cite(2, srcB))},
		},
		{
			name:    "nested brackets match innermost citation only",
			content: "[[1]]",
			sources: []model.SourceLink{srcA},
			want:    []Paragraph{text(Text("["), Cite(1, srcA), Text("]"))},
		},
		{
			name:    "escaped paren stays in url",
			content: `[wiki](https://en.wikipedia.org/wiki/Foo_\(bar\))`,
			want:    []Paragraph{text(Link("wiki", "https://en.wikipedia.org/wiki/Foo_(bar)"))},
		},
		{
			name:    "url ends at first unescaped paren",
			content: "[a](https://x.example/p)b)",
			want:    []Paragraph{text(Link("a", "https://x.example/p"), Text("b)"))},
		},
		{
			name:    "whitespace in url prevents a link",
			content: "[a](https://x.example/a b)",
			want:    []Paragraph{text(Text("[a](https://x.example/a b)"))},
		},
		{
			name:    "citation inside surrounding text of two links",
			content: "[a](https://a.example)[2][b](https://b.example)",
			sources: []model.SourceLink{srcA, srcB},
			want: []Paragraph{text(
				Link("a", "https://a.example"), Cite(2, srcB), Link("b", "https://b.example"),
			)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.content, tt.sources)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Render(%q) mismatch (-want +got):\n%s", tt.content, diff)
			}
		})
	}
}

func TestRenderOverflowingDigits(t *testing.T) {
	digits := "99999999999999999999999"
	got := Render("x ["+digits+"]", []model.SourceLink{srcA, srcB})

	want := []Paragraph{text(
		Text("x "),
		Segment{Kind: Citation, Text: digits, Number: 0, Source: srcA},
	)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	got = Render("x ["+digits+"]", nil)
	want = []Paragraph{text(Text("x [" + digits + "]"))}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("no-source mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderLeadingZeroCitation(t *testing.T) {
	got := Render("see [007] and [02]", []model.SourceLink{srcA, srcB})

	want := []Paragraph{text(
		Text("see "),
		Segment{Kind: Citation, Text: "007", Number: 7, Source: srcA},
		Text(" and "),
		Segment{Kind: Citation, Text: "02", Number: 2, Source: srcB},
	)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderPlainRoundTrip(t *testing.T) {
	inputs := []string{
		"Hello world",
		"Line one\nLine two\n\nLine four",
		"unicode 星舰 进展 — dashes, (parens) and ] stray",
		"trailing newline\n",
		"   leading spaces kept",
	}
	for _, in := range inputs {
		got := PlainString(Render(in, []model.SourceLink{srcA}))
		// Whitespace-only lines come back empty.
		var want []string
		for _, line := range strings.Split(in, "\n") {
			if strings.TrimSpace(line) == "" {
				line = ""
			}
			want = append(want, line)
		}
		if got != strings.Join(want, "\n") {
			t.Errorf("round trip of %q = %q", in, got)
		}
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	content := "[Site](https://s.example) says [1], [3] and [x]\n\n[2]"
	sources := []model.SourceLink{srcA, srcB}
	first := Render(content, sources)
	second := Render(content, sources)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Render not deterministic:\n%s", diff)
	}
}

func TestCitations(t *testing.T) {
	ps := Render("a [2]\n\nb [1] [9]", []model.SourceLink{srcA, srcB})
	cites := Citations(ps)
	if len(cites) != 3 {
		t.Fatalf("expected 3 citations, got %d", len(cites))
	}
	wantTitles := []string{"B", "A", "A"}
	for i, c := range cites {
		if c.Source.Title != wantTitles[i] {
			t.Errorf("citation %d resolved to %q, want %q", i, c.Source.Title, wantTitles[i])
		}
	}
}

func TestKindString(t *testing.T) {
	if PlainText.String() != "text" || Hyperlink.String() != "link" || Citation.String() != "citation" {
		t.Error("unexpected Kind names")
	}
	if Kind(42).String() != "unknown" {
		t.Error("unknown kind should stringify as unknown")
	}
}
