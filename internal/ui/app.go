package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/infopulse/internal/model"
	"github.com/abelbrown/infopulse/internal/otel"
	"github.com/abelbrown/infopulse/internal/state"
)

// View identifies a screen.
type View int

const (
	ViewFeed View = iota
	ViewFavorites
	ViewAdd
	ViewMine
)

// tabOrder is the cycle followed by the tab key. Add is entered with its own key.
var tabOrder = []View{ViewFeed, ViewFavorites, ViewMine}

// AppConfig wires the App to the rest of the program. Every command func
// is optional; a nil func turns the matching action into a no-op.
type AppConfig struct {
	LoadState      func() tea.Cmd
	Refresh        func(topicIDs ...string) tea.Cmd
	AddTopic       func(query, scheduleTime string) tea.Cmd
	RemoveTopic    func(id string) tea.Cmd
	MarkRead       func(id string) tea.Cmd
	ToggleFavorite func(id string) tea.Cmd
	RemoveFavorite func(id string) tea.Cmd
	ToggleExcluded func(name string) tea.Cmd
	SetLanguage    func(lang model.Language) tea.Cmd

	APIKeyConfigured bool
	ProviderName     string
	Version          string
	Events           *otel.RingBuffer // shown in the event overlay
}

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold *state.State. It receives snapshots via messages.
type App struct {
	cfg  AppConfig
	keys keyMap

	help     help.Model
	spinner  spinner.Model
	viewport viewport.Model
	query    textinput.Model
	schedule textinput.Model
	addFocus int // 0 = query, 1 = schedule

	snap   model.Snapshot
	view   View
	cursor [4]int // per View

	refreshing int // in-flight refresh batches
	adding     bool
	status     string
	warn       string
	confirmID  string // topic awaiting delete confirmation
	showDebug  bool

	width  int
	height int
	ready  bool
	now    func() time.Time
}

// NewApp creates a new App.
func NewApp(cfg AppConfig) App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorHighlight)

	q := textinput.New()
	q.CharLimit = 200
	q.Prompt = "› "

	sched := textinput.New()
	sched.CharLimit = 5
	sched.Prompt = "› "
	sched.Placeholder = model.DefaultScheduleTime
	sched.SetValue(model.DefaultScheduleTime)

	a := App{
		cfg:      cfg,
		keys:     defaultKeyMap(),
		help:     help.New(),
		spinner:  s,
		viewport: viewport.New(80, 20),
		query:    q,
		schedule: sched,
		snap:     model.Snapshot{Language: model.DefaultLanguage},
		now:      time.Now,
	}
	a.applyLanguage()
	return a
}

// Init loads persisted state.
func (a App) Init() tea.Cmd {
	if a.cfg.LoadState == nil {
		return nil
	}
	return a.cfg.LoadState()
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.layout()
		return a, nil

	case spinner.TickMsg:
		if a.refreshing == 0 && !a.adding {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case StateLoaded:
		a.setSnapshot(msg.Snapshot)
		return a, nil

	case StateChanged:
		a.setSnapshot(msg.Snapshot)
		return a, nil

	case TopicAdded:
		a.adding = false
		if msg.Err != nil {
			if errors.Is(msg.Err, state.ErrEmptyQuery) {
				a.warn = textsFor(a.snap.Language).emptyQueryWarn
			} else {
				a.warn = msg.Err.Error()
			}
			return a, nil
		}
		a.query.Reset()
		a.schedule.SetValue(model.DefaultScheduleTime)
		a.query.Blur()
		a.schedule.Blur()
		a.view = ViewFeed
		a.cursor[ViewFeed] = 0
		a.setSnapshot(msg.Snapshot)
		return a, a.startRefresh(msg.Topic.ID)

	case RefreshComplete:
		if a.refreshing > 0 {
			a.refreshing--
		}
		a.status = a.refreshStatus(msg)
		a.setSnapshot(msg.Snapshot)
		return a, nil
	}

	if a.view == ViewAdd {
		return a.updateInputs(msg)
	}
	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}
	if a.view == ViewAdd {
		return a.handleAddKey(msg)
	}

	// Delete confirmation swallows the next key.
	if a.confirmID != "" {
		id := a.confirmID
		a.confirmID = ""
		if msg.String() == "y" || msg.String() == "Y" {
			return a, call1(a.cfg.RemoveTopic, id)
		}
		return a, nil
	}

	if a.showDebug {
		switch {
		case key.Matches(msg, a.keys.Debug), key.Matches(msg, a.keys.Escape):
			a.showDebug = false
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		}
		return a, nil
	}

	a.status = ""
	a.warn = ""

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		a.layout()
		return a, nil

	case key.Matches(msg, a.keys.Debug):
		a.showDebug = true
		return a, nil

	case key.Matches(msg, a.keys.NextView):
		a.view = nextView(a.view)
		a.viewport.GotoTop()
		a.syncViewport()
		return a, nil

	case key.Matches(msg, a.keys.Add):
		a.view = ViewAdd
		a.addFocus = 0
		a.schedule.Blur()
		return a, a.query.Focus()

	case key.Matches(msg, a.keys.Refresh):
		if len(a.snap.Topics) == 0 {
			return a, nil
		}
		return a, a.startRefresh()

	case key.Matches(msg, a.keys.Language):
		next := model.LangEnglish
		if a.snap.Language == model.LangEnglish {
			next = model.LangChinese
		}
		if a.cfg.SetLanguage == nil {
			return a, nil
		}
		return a, a.cfg.SetLanguage(next)

	case key.Matches(msg, a.keys.Up):
		a.moveCursor(-1)
		return a, nil

	case key.Matches(msg, a.keys.Down):
		a.moveCursor(1)
		return a, nil

	case key.Matches(msg, a.keys.Top):
		a.cursor[a.view] = 0
		a.syncViewport()
		return a, nil

	case key.Matches(msg, a.keys.Bottom):
		if n := a.listLen(); n > 0 {
			a.cursor[a.view] = n - 1
		}
		a.syncViewport()
		return a, nil
	}

	switch a.view {
	case ViewFeed:
		return a.handleFeedKey(msg)
	case ViewFavorites:
		return a.handleFavoritesKey(msg)
	case ViewMine:
		return a.handleMineKey(msg)
	}
	return a, nil
}

func (a App) handleFeedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item, ok := a.selectedItem()
	if !ok {
		return a, nil
	}
	switch {
	case key.Matches(msg, a.keys.Read):
		if !item.IsRead {
			return a, call1(a.cfg.MarkRead, item.ID)
		}
	case key.Matches(msg, a.keys.Favorite):
		return a, call1(a.cfg.ToggleFavorite, item.ID)
	}
	return a, nil
}

func (a App) handleFavoritesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item, ok := a.selectedItem()
	if !ok {
		return a, nil
	}
	if key.Matches(msg, a.keys.Delete) || key.Matches(msg, a.keys.Favorite) {
		return a, call1(a.cfg.RemoveFavorite, item.ID)
	}
	return a, nil
}

func (a App) handleMineKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Delete):
		if c := a.cursor[ViewMine]; c < len(a.snap.Topics) {
			a.confirmID = a.snap.Topics[c].ID
		}
		return a, nil

	case key.Matches(msg, a.keys.Sources):
		i := int(msg.String()[0] - '1')
		if i >= 0 && i < len(model.KnownSourceCategories) && a.cfg.ToggleExcluded != nil {
			return a, a.cfg.ToggleExcluded(model.KnownSourceCategories[i])
		}
	}
	return a, nil
}

func (a App) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.view = ViewFeed
		a.warn = ""
		a.query.Blur()
		a.schedule.Blur()
		a.syncViewport()
		return a, nil

	case "tab", "shift+tab", "up", "down":
		a.addFocus = 1 - a.addFocus
		if a.addFocus == 0 {
			a.schedule.Blur()
			return a, a.query.Focus()
		}
		a.query.Blur()
		return a, a.schedule.Focus()

	case "enter":
		if a.adding {
			return a, nil
		}
		if strings.TrimSpace(a.query.Value()) == "" {
			a.warn = textsFor(a.snap.Language).emptyQueryWarn
			return a, nil
		}
		if a.cfg.AddTopic == nil {
			return a, nil
		}
		a.adding = true
		a.warn = ""
		return a, tea.Batch(a.cfg.AddTopic(a.query.Value(), a.schedule.Value()), a.spinner.Tick)
	}
	return a.updateInputs(msg)
}

func (a App) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if a.addFocus == 0 {
		a.query, cmd = a.query.Update(msg)
	} else {
		a.schedule, cmd = a.schedule.Update(msg)
	}
	return a, cmd
}

// startRefresh records a new in-flight batch and dispatches it.
func (a *App) startRefresh(topicIDs ...string) tea.Cmd {
	if a.cfg.Refresh == nil {
		return nil
	}
	a.refreshing++
	a.syncViewport()
	return tea.Batch(a.cfg.Refresh(topicIDs...), a.spinner.Tick)
}

func (a App) refreshStatus(msg RefreshComplete) string {
	tr := textsFor(a.snap.Language)
	if msg.Snapshot.Language != "" {
		tr = textsFor(msg.Snapshot.Language)
	}
	var parts []string
	if msg.Committed > 0 {
		parts = append(parts, fmt.Sprintf(tr.refreshed, msg.Committed))
	}
	if msg.Failed > 0 {
		parts = append(parts, fmt.Sprintf(tr.refreshFailed, msg.Failed))
	}
	if msg.Orphaned > 0 {
		parts = append(parts, fmt.Sprintf(tr.orphaned, msg.Orphaned))
	}
	return strings.Join(parts, " · ")
}

func (a *App) setSnapshot(s model.Snapshot) {
	langChanged := s.Language != a.snap.Language
	a.snap = s
	if langChanged {
		a.applyLanguage()
	}
	for v := range a.cursor {
		a.clampCursor(View(v))
	}
	a.syncViewport()
}

// applyLanguage refreshes strings baked into sub-models.
func (a *App) applyLanguage() {
	a.query.Placeholder = textsFor(a.snap.Language).placeholder
}

func nextView(v View) View {
	for i, tv := range tabOrder {
		if tv == v {
			return tabOrder[(i+1)%len(tabOrder)]
		}
	}
	return ViewFeed
}

func (a App) listLen() int {
	switch a.view {
	case ViewFeed:
		return len(a.snap.Feed)
	case ViewFavorites:
		return len(a.snap.Favorites)
	case ViewMine:
		return len(a.snap.Topics)
	}
	return 0
}

func (a *App) moveCursor(delta int) {
	c := a.cursor[a.view] + delta
	if n := a.listLen(); c >= n {
		c = n - 1
	}
	if c < 0 {
		c = 0
	}
	a.cursor[a.view] = c
	a.syncViewport()
}

func (a *App) clampCursor(v View) {
	saved := a.view
	a.view = v
	if n := a.listLen(); a.cursor[v] >= n {
		a.cursor[v] = max(n-1, 0)
	}
	a.view = saved
}

func (a App) items() []model.FeedItem {
	if a.view == ViewFavorites {
		return a.snap.Favorites
	}
	return a.snap.Feed
}

func (a App) selectedItem() (model.FeedItem, bool) {
	items := a.items()
	c := a.cursor[a.view]
	if c < 0 || c >= len(items) {
		return model.FeedItem{}, false
	}
	return items[c], true
}

// Layout.

const (
	headerHeight = 2 // title row + blank
	footerHeight = 2 // status + banner/prompt
)

func (a *App) layout() {
	if !a.ready {
		return
	}
	helpHeight := lipgloss.Height(a.help.View(a.keys))
	a.help.Width = a.width
	a.viewport.Width = a.width
	a.viewport.Height = max(a.height-headerHeight-footerHeight-helpHeight, 3)
	a.query.Width = max(a.width-8, 10)
	a.syncViewport()
}

// syncViewport re-renders the scrollable body and keeps the cursor visible.
func (a *App) syncViewport() {
	if !a.ready || a.view == ViewAdd {
		return
	}
	content, top, bottom := a.body()
	a.viewport.SetContent(content)
	if top < a.viewport.YOffset {
		a.viewport.SetYOffset(top)
	} else if bottom > a.viewport.YOffset+a.viewport.Height {
		a.viewport.SetYOffset(min(bottom-a.viewport.Height, top))
	}
}

// body renders the current list view and the line span of the selected row.
func (a App) body() (string, int, int) {
	tr := textsFor(a.snap.Language)
	switch a.view {
	case ViewFeed:
		if len(a.snap.Topics) == 0 && len(a.snap.Feed) == 0 {
			return HelpStyle.Render(PageTitle.Render(tr.emptyTitle) + "\n" + tr.emptyDesc), 0, 0
		}
		if len(a.snap.Feed) == 0 {
			if a.refreshing > 0 {
				return HelpStyle.Render(tr.loading), 0, 0
			}
			return HelpStyle.Render(tr.noUpdates), 0, 0
		}
		return a.cardBody(a.snap.Feed, true)

	case ViewFavorites:
		if len(a.snap.Favorites) == 0 {
			return HelpStyle.Render(tr.noFavorites + "\n" + tr.favoritesHint), 0, 0
		}
		return a.cardBody(a.snap.Favorites, false)

	case ViewMine:
		return a.mineBody()
	}
	return "", 0, 0
}

func (a App) cardBody(items []model.FeedItem, bands bool) (string, int, int) {
	c := a.cursor[a.view]
	list := renderCards(items, c, a.width, a.snap.Language, a.now(), bands)
	if c >= len(items) {
		return list.content, 0, 0
	}
	top := list.starts[c]
	if bands && c > 0 && list.starts[c] != list.ends[c-1] {
		top-- // keep the band header in view
	}
	return list.content, top, list.ends[c]
}

func (a App) mineBody() (string, int, int) {
	tr := textsFor(a.snap.Language)
	var lines []string
	lines = append(lines, PageTitle.Render(tr.mineTitle))
	first := len(lines)

	if len(a.snap.Topics) == 0 {
		lines = append(lines, HelpStyle.Render(tr.mineEmpty))
	}
	for i, topic := range a.snap.Topics {
		row := fmt.Sprintf("%s  %s", sanitize(topic.Query), Timestamp.Render(tr.dailyAt+" "+topic.ScheduleTime))
		if i == a.cursor[ViewMine] {
			lines = append(lines, SelectedRow.Render(row))
		} else {
			lines = append(lines, NormalRow.Render(row))
		}
	}

	lines = append(lines, "", PageTitle.Render(tr.settings))
	lines = append(lines, settingsRow(tr.language, string(a.snap.Language)+"  (L)"))

	keyStatus := ErrorStyle.UnsetPadding().Render(tr.keyMissing)
	if a.cfg.APIKeyConfigured {
		keyStatus = SuccessStyle.Render(tr.keyConfigured)
	}
	lines = append(lines, settingsRow(tr.apiKeyStatus, keyStatus))
	if a.cfg.ProviderName != "" {
		lines = append(lines, settingsRow(tr.provider, a.cfg.ProviderName))
	}

	lines = append(lines, settingsRow(tr.dataSources, ""))
	for i, name := range model.KnownSourceCategories {
		mark := "[✓]"
		suffix := ""
		if a.snap.Settings.IsExcluded(name) {
			mark = "[ ]"
			suffix = " " + Timestamp.Render(tr.excluded)
		}
		lines = append(lines, fmt.Sprintf("    %d %s %s%s", i+1, mark, name, suffix))
	}
	if a.cfg.Version != "" {
		lines = append(lines, settingsRow(tr.version, a.cfg.Version))
	}

	top := first + a.cursor[ViewMine]
	if len(a.snap.Topics) == 0 {
		top = 0
	}
	return strings.Join(lines, "\n"), top, top + 1
}

func settingsRow(label, value string) string {
	return "  " + Label.Render(label+": ") + Value.Render(value)
}

// View renders the App.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}
	if a.showDebug {
		return debugOverlay(a.cfg.Events, a.width, a.height) + "\n" + a.help.View(a.keys)
	}

	var body string
	if a.view == ViewAdd {
		body = a.addView()
	} else {
		body = a.viewport.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.header(),
		"",
		body,
		a.notice(),
		a.statusBar(),
		a.help.View(a.keys),
	)
}

func (a App) header() string {
	tr := textsFor(a.snap.Language)
	tabs := []struct {
		v     View
		label string
	}{
		{ViewFeed, tr.navFeed},
		{ViewFavorites, tr.navFavorites},
		{ViewAdd, tr.navAdd},
		{ViewMine, tr.navMine},
	}
	parts := []string{HeaderTitle.Render("InfoPulse")}
	for _, tab := range tabs {
		if tab.v == a.view {
			parts = append(parts, NavActive.Render(tab.label))
		} else {
			parts = append(parts, NavInactive.Render(tab.label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// notice is the single line between body and status bar.
func (a App) notice() string {
	tr := textsFor(a.snap.Language)
	switch {
	case a.confirmID != "":
		return ErrorStyle.Render(tr.confirmDelete)
	case a.warn != "":
		return ErrorStyle.Render(a.warn)
	case a.refreshing > 0:
		return Banner.Render(a.spinner.View() + " " + tr.loading)
	}
	return ""
}

func (a App) statusBar() string {
	unread := 0
	for _, it := range a.snap.Feed {
		if !it.IsRead {
			unread++
		}
	}
	left := fmt.Sprintf("%d topics · %d unread · %d saved", len(a.snap.Topics), unread, len(a.snap.Favorites))
	if a.status != "" {
		left += "  " + a.status
	}
	return StatusBar.Width(a.width).Render(left)
}

func (a App) addView() string {
	tr := textsFor(a.snap.Language)
	button := "[ enter ] " + tr.btnStart
	if a.adding {
		button = a.spinner.View() + " " + tr.btnLoading
	}
	lines := []string{
		PageTitle.Render(tr.addTitle),
		"  " + Label.Render(tr.labelQuery),
		"  " + a.query.View(),
		"  " + Timestamp.Render(tr.descQuery),
		"",
		"  " + Label.Render(tr.labelTime),
		"  " + a.schedule.View(),
		"  " + Timestamp.Render(tr.descTime),
		"",
		"  " + SuccessStyle.Render(button),
	}
	out := strings.Join(lines, "\n")
	if pad := a.viewport.Height - lipgloss.Height(out); pad > 0 {
		out += strings.Repeat("\n", pad)
	}
	return out
}

// Accessors used by tests and the program wiring.

// CurrentView returns the active screen.
func (a App) CurrentView() View { return a.view }

// Cursor returns the cursor position in the active list.
func (a App) Cursor() int { return a.cursor[a.view] }

// Snapshot returns the state the App is displaying.
func (a App) Snapshot() model.Snapshot { return a.snap }

// Refreshing reports how many refresh batches are in flight.
func (a App) Refreshing() int { return a.refreshing }

// call1 invokes an optional single-argument command func.
func call1(f func(string) tea.Cmd, arg string) tea.Cmd {
	if f == nil {
		return nil
	}
	return f(arg)
}
