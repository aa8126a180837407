package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("33")  // Blue
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("39")  // Light blue
	colorSuccess   = lipgloss.Color("78")  // Green
	colorDanger    = lipgloss.Color("196") // Red
	colorStar      = lipgloss.Color("220") // Yellow
)

// HeaderTitle is the app name in the top bar.
var HeaderTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// NavActive and NavInactive style the view tabs.
var (
	NavActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorHighlight).
			Underline(true).
			Padding(0, 1)

	NavInactive = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Padding(0, 1)
)

// PageTitle style for view headings.
var PageTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	MarginBottom(1).
	Padding(0, 1)

// Card is the border around one feed item.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("238")).
	Padding(0, 1)

// SelectedCard highlights the card under the cursor.
var SelectedCard = Card.
	BorderForeground(colorPrimary)

// TopicBadge style for the topic label on a card.
var TopicBadge = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("17")).
	Background(lipgloss.Color("153")).
	Padding(0, 1)

// Timestamp style for card times.
var Timestamp = lipgloss.NewStyle().
	Foreground(colorMuted)

// ReadText dims the body of cards that have been read.
var ReadText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// UnreadDot marks unread cards.
var UnreadDot = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Bold(true)

// FavoriteStar marks saved cards.
var FavoriteStar = lipgloss.NewStyle().
	Foreground(colorStar)

// LinkText style for inline hyperlinks.
var LinkText = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Underline(true)

// CitationBadge style for inline citation markers.
var CitationBadge = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Bold(true)

// SourcesLabel style for the sources heading under a card.
var SourcesLabel = lipgloss.NewStyle().
	Foreground(colorMuted).
	Italic(true)

// TimeBandHeader style for time band labels.
var TimeBandHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	Padding(0, 1)

// Banner style for the refresh-in-progress notice.
var Banner = lipgloss.NewStyle().
	Foreground(lipgloss.Color("153")).
	Background(lipgloss.Color("17")).
	Padding(0, 1)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorDanger).
	Bold(true).
	Padding(0, 1)

// SuccessStyle for positive status values.
var SuccessStyle = lipgloss.NewStyle().
	Foreground(colorSuccess).
	Bold(true)

// HelpStyle for help and empty-state text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// Label and Value style settings rows.
var (
	Label = lipgloss.NewStyle().Foreground(colorSecondary)
	Value = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
)

// SelectedRow highlights the list row under the cursor.
var SelectedRow = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// NormalRow style for unselected list rows.
var NormalRow = lipgloss.NewStyle().
	Padding(0, 1)

// DebugPanel style for the event overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder()).
	BorderForeground(colorMuted).
	Padding(1, 2)

// DebugHeaderStyle for section headings in the event overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
