package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/abelbrown/infopulse/internal/model"
	"github.com/abelbrown/infopulse/internal/render"
)

// badgeRunes is the longest topic label shown on a card before truncation.
const badgeRunes = 15

// TimeBand returns the localized group label for an item's age, relative to now.
func TimeBand(ts, now time.Time, lang model.Language) string {
	tr := textsFor(lang)
	y1, m1, d1 := ts.Local().Date()
	y2, m2, d2 := now.Local().Date()
	today := time.Date(y2, m2, d2, 0, 0, 0, 0, time.Local)
	day := time.Date(y1, m1, d1, 0, 0, 0, 0, time.Local)
	switch {
	case !day.Before(today):
		return tr.bandToday
	case !day.Before(today.AddDate(0, 0, -1)):
		return tr.bandYesterday
	default:
		return tr.bandEarlier
	}
}

// sanitize removes escape sequences and control characters from untrusted text
// so it can never drive the terminal.
func sanitize(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// truncateRunes shortens s to n runes, appending "..." when cut.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

// hyperlink wraps label in an OSC 8 sequence pointing at url.
func hyperlink(label, url string) string {
	return ansi.SetHyperlink(sanitize(url)) + label + ansi.ResetHyperlink()
}

// citationLabel shows the parsed citation number. Digits too large to parse
// are shown as written.
func citationLabel(seg render.Segment) string {
	if seg.Number > 0 {
		return "[" + strconv.Itoa(seg.Number) + "]"
	}
	return "[" + seg.Text + "]"
}

// renderSegments turns one paragraph into a styled terminal line.
func renderSegments(segs []render.Segment, dim bool) string {
	var b strings.Builder
	for _, seg := range segs {
		switch seg.Kind {
		case render.Hyperlink:
			b.WriteString(hyperlink(LinkText.Render(sanitize(seg.Text)), seg.URL))
		case render.Citation:
			b.WriteString(hyperlink(CitationBadge.Render(citationLabel(seg)), seg.Source.URL))
		default:
			text := sanitize(seg.Text)
			if dim {
				text = ReadText.Render(text)
			}
			b.WriteString(text)
		}
	}
	return b.String()
}

// renderBody renders digest content as wrapped lines within width columns.
func renderBody(content string, sources []model.SourceLink, width int, dim bool) string {
	if width < 10 {
		width = 10
	}
	var lines []string
	for _, p := range render.Render(content, sources) {
		if p.Spacer {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, ansi.Wrap(renderSegments(p.Segments, dim), width, ""))
	}
	return strings.Join(lines, "\n")
}

// renderSources lists a card's sources as numbered links.
func renderSources(sources []model.SourceLink, lang model.Language, width int) string {
	if len(sources) == 0 {
		return ""
	}
	lines := []string{SourcesLabel.Render(textsFor(lang).sources)}
	for i, src := range sources {
		title := sanitize(src.Title)
		if title == "" {
			title = sanitize(src.URL)
		}
		label := fmt.Sprintf("[%d] %s", i+1, truncateRunes(title, max(width-8, 10)))
		lines = append(lines, "  "+hyperlink(LinkText.Render(label), src.URL))
	}
	return strings.Join(lines, "\n")
}

// renderCard renders one feed item. Sources are listed only when expanded.
func renderCard(item model.FeedItem, width int, lang model.Language, selected, expanded bool) string {
	inner := width - 4 // border + padding
	if inner < 10 {
		inner = 10
	}

	marker := " "
	if !item.IsRead {
		marker = UnreadDot.Render("●")
	}
	badge := TopicBadge.Render(truncateRunes(sanitize(item.TopicQuery), badgeRunes))
	head := marker + " " + badge + " " + Timestamp.Render(formatTimestamp(item.Timestamp, lang))
	if item.IsFavorite {
		head += " " + FavoriteStar.Render("★")
	}

	parts := []string{head, "", renderBody(item.Content, item.Sources, inner, item.IsRead)}
	if expanded {
		if src := renderSources(item.Sources, lang, inner); src != "" {
			parts = append(parts, "", src)
		}
	}

	style := Card
	if selected {
		style = SelectedCard
	}
	return style.Width(width - 2).Render(strings.Join(parts, "\n"))
}

// cardList is a rendered list of cards plus the line span of each card.
type cardList struct {
	content string
	starts  []int
	ends    []int // exclusive
}

// renderCards renders items in order, inserting time band headers when bands is true.
func renderCards(items []model.FeedItem, cursor, width int, lang model.Language, now time.Time, bands bool) cardList {
	var (
		b      strings.Builder
		starts = make([]int, len(items))
		ends   = make([]int, len(items))
		line   int
		band   string
	)
	for i, item := range items {
		if bands {
			if tb := TimeBand(item.Timestamp, now, lang); tb != band {
				band = tb
				b.WriteString(TimeBandHeader.Render(band))
				b.WriteString("\n")
				line++
			}
		}
		starts[i] = line
		card := renderCard(item, width, lang, i == cursor, i == cursor)
		b.WriteString(card)
		b.WriteString("\n")
		line += lipgloss.Height(card)
		ends[i] = line
	}
	return cardList{content: strings.TrimSuffix(b.String(), "\n"), starts: starts, ends: ends}
}
