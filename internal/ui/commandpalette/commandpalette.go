// Package commandpalette renders the slash command menu. It drives a
// commands.Session: the filter either comes from text typed in the document
// or from the palette's own search input.
package commandpalette

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/keys"
	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/plugins/commands"
	"github.com/usekona/kona/internal/pubsub"
	"github.com/usekona/kona/internal/ui/overlay"
	"github.com/usekona/kona/internal/ui/styles"
)

// Config defines command palette configuration.
type Config struct {
	Root     []commands.Command
	Editor   *document.Editor
	Debounce time.Duration // Filter debounce (default commands.DefaultDebounce)

	Title       string // Shown at the root level (empty = no title bar)
	Input       bool   // Show a search input; otherwise call SetFilter
	Placeholder string // Search input placeholder
	Filter      string // Initial filter

	MinWidth        int // Minimum width (default 30)
	MaxWidth        int // Maximum width (default 56)
	MaxVisibleItems int // Max items visible before scrolling (default 6)
}

// SelectMsg is sent when a runnable command is chosen.
type SelectMsg struct {
	Command commands.ResolvedCommand
}

// CancelMsg is sent on Esc.
type CancelMsg struct{}

// StateMsg carries a new session state.
type StateMsg struct {
	session *commands.Session
}

// Model holds the command palette state.
type Model struct {
	config    Config
	session   *commands.Session
	events    <-chan pubsub.Event[commands.State]
	ctx       context.Context
	cancel    context.CancelFunc
	textInput textinput.Model

	path []commands.PathEntry
	// base is the filter typed before the current submenu was entered.
	base   string
	filter string
	state  commands.State

	cursor         int
	scrollOffset   int
	viewportWidth  int
	viewportHeight int
}

// New opens a palette and starts resolving the root level.
func New(cfg Config) Model {
	ti := textinput.New()
	ti.Placeholder = cfg.Placeholder
	if ti.Placeholder == "" {
		ti.Placeholder = "Search commands..."
	}
	ti.Prompt = ""
	ti.SetValue(cfg.Filter)
	ti.Focus()

	ctx, cancel := context.WithCancel(context.Background())
	session := commands.NewSession(ctx, commands.SessionOptions{
		Root:     cfg.Root,
		Editor:   cfg.Editor,
		Debounce: cfg.Debounce,
	})

	m := Model{
		config:    cfg,
		session:   session,
		events:    session.Subscribe(ctx),
		ctx:       ctx,
		cancel:    cancel,
		textInput: ti,
		filter:    cfg.Filter,
	}
	m.resolve()
	return m
}

// Init waits for the first state.
func (m Model) Init() tea.Cmd {
	if m.config.Input {
		return tea.Batch(textinput.Blink, m.waitForState())
	}
	return m.waitForState()
}

// Close stops the session. The palette is unusable afterwards.
func (m Model) Close() {
	m.session.Close()
	m.cancel()
}

func (m Model) waitForState() tea.Cmd {
	session, listen := m.session, pubsub.ListenCmd(m.ctx, m.events)
	return func() tea.Msg {
		if listen() == nil {
			return nil
		}
		return StateMsg{session: session}
	}
}

func (m *Model) resolve() {
	m.session.Input(m.path, m.effectiveFilter())
}

func (m Model) effectiveFilter() string {
	return strings.TrimPrefix(m.filter, m.base)
}

// Handles reports whether the palette consumes msg when it is shown over
// an editor. Other keys belong to the editor.
func Handles(msg tea.KeyMsg) bool {
	km := keys.Palette
	return key.Matches(msg, km.Up, km.Down, km.Select, km.Enter, km.Back, km.Cancel)
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		if msg.session != m.session {
			return m, nil
		}
		m.state = m.session.State()
		m = m.clampCursor()
		return m, m.waitForState()

	case tea.KeyMsg:
		km := keys.Palette
		switch {
		case key.Matches(msg, km.Down):
			if n := len(m.state.Commands); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m = m.ensureCursorVisible()
			}
			return m, nil

		case key.Matches(msg, km.Up):
			if n := len(m.state.Commands); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m = m.ensureCursorVisible()
			}
			return m, nil

		case key.Matches(msg, km.Select):
			return m.choose()

		case key.Matches(msg, km.Enter):
			if sel, ok := m.Selected(); ok && sel.IsSubmenu {
				return m.enter(sel), nil
			}
			return m, nil

		case key.Matches(msg, km.Back):
			return m.back(), nil

		case key.Matches(msg, km.Cancel):
			return m, func() tea.Msg { return CancelMsg{} }

		case m.config.Input && key.Matches(msg, km.Clear):
			m.textInput.SetValue("")
			return m.SetFilter(""), nil

		case m.config.Input:
			var cmd tea.Cmd
			m.textInput, cmd = m.textInput.Update(msg)
			return m.SetFilter(m.textInput.Value()), cmd
		}

	case tea.MouseMsg:
		if msg.Button != tea.MouseButtonWheelUp && msg.Button != tea.MouseButtonWheelDown {
			return m, nil
		}
		maxOffset := max(0, len(m.state.Commands)-m.maxVisibleItems())
		if msg.Button == tea.MouseButtonWheelUp {
			m.scrollOffset = max(m.scrollOffset-1, 0)
		} else {
			m.scrollOffset = min(m.scrollOffset+1, maxOffset)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.viewportWidth = msg.Width
		m.viewportHeight = msg.Height
	}

	return m, nil
}

// SetFilter updates the filter. Deleting back past the text typed before
// a submenu was entered returns to the root level.
func (m Model) SetFilter(filter string) Model {
	if filter == m.filter {
		return m
	}
	if len(m.path) > 0 && !strings.HasPrefix(filter, m.base) {
		log.Debug(log.CatUI, "palette filter left submenu", "filter", filter)
		m.path, m.base = nil, ""
	}
	m.filter = filter
	m.cursor, m.scrollOffset = 0, 0
	m.resolve()
	return m
}

func (m Model) choose() (Model, tea.Cmd) {
	sel, ok := m.Selected()
	if !ok {
		return m, nil
	}
	if sel.IsSubmenu {
		return m.enter(sel), nil
	}
	return m, func() tea.Msg { return SelectMsg{Command: sel} }
}

// enter opens a submenu. Search results carry their full path.
func (m Model) enter(sel commands.ResolvedCommand) Model {
	m.path = sel.Path
	m.base = m.filter
	if m.config.Input {
		m.textInput.SetValue("")
		m.filter, m.base = "", ""
	}
	m.cursor, m.scrollOffset = 0, 0
	m.resolve()
	return m
}

func (m Model) back() Model {
	if len(m.path) == 0 {
		return m
	}
	m.path = m.path[:len(m.path)-1]
	if len(m.path) == 0 {
		m.base = ""
	}
	m.cursor, m.scrollOffset = 0, 0
	m.resolve()
	return m
}

func (m Model) clampCursor() Model {
	if m.cursor >= len(m.state.Commands) {
		m.cursor, m.scrollOffset = 0, 0
	}
	return m.ensureCursorVisible()
}

// maxVisibleItems uses the configured value, shrinking only when the
// viewport is too small.
func (m Model) maxVisibleItems() int {
	target := m.config.MaxVisibleItems
	if target <= 0 {
		target = 6
	}
	if m.viewportHeight > 0 {
		// border (2) + header and divider (2) + search and divider (2)
		maxFromViewport := max(m.viewportHeight-6, 2)
		if maxFromViewport < target {
			return maxFromViewport
		}
	}
	return target
}

func (m Model) ensureCursorVisible() Model {
	maxVisible := m.maxVisibleItems()
	if m.cursor >= m.scrollOffset+maxVisible {
		m.scrollOffset = m.cursor - maxVisible + 1
	}
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	return m
}

// SetSize sets the viewport dimensions for overlay rendering.
func (m Model) SetSize(width, height int) Model {
	m.viewportWidth = width
	m.viewportHeight = height
	return m
}

// Selected returns the highlighted entry.
func (m Model) Selected() (commands.ResolvedCommand, bool) {
	if m.cursor >= 0 && m.cursor < len(m.state.Commands) {
		return m.state.Commands[m.cursor], true
	}
	return commands.ResolvedCommand{}, false
}

// Cursor returns the current cursor position.
func (m Model) Cursor() int { return m.cursor }

// State returns the last state received from the session.
func (m Model) State() commands.State { return m.state }

// Path returns the submenu path.
func (m Model) Path() []commands.PathEntry { return m.path }

func (m Model) width() int {
	w := m.config.MaxWidth
	if w == 0 {
		w = 56
	}
	minW := m.config.MinWidth
	if minW == 0 {
		minW = 30
	}
	if m.viewportWidth > 0 && m.viewportWidth-2 < w {
		w = max(m.viewportWidth-2, minW)
	}
	return w
}

// View renders the palette box.
func (m Model) View() string {
	contentWidth := m.width()

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.OverlayTitleColor).PaddingLeft(1)
	mutedStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	divider := lipgloss.NewStyle().Foreground(styles.OverlayBorderColor).Render(strings.Repeat("─", contentWidth))

	var content strings.Builder
	lines := 0
	writeLine := func(s string) {
		if lines > 0 {
			content.WriteString("\n")
		}
		content.WriteString(s)
		lines++
	}

	if header := m.header(contentWidth - 2); header != "" {
		hints := mutedStyle.Render("↑/↓ • Enter • Esc")
		title := titleStyle.Render(header)
		padding := max(contentWidth-lipgloss.Width(title)-lipgloss.Width(hints)-1, 1)
		writeLine(title + strings.Repeat(" ", padding) + hints)
		writeLine(divider)
	}

	if m.config.Input {
		m.textInput.Width = contentWidth - 4
		writeLine(mutedStyle.Render(" > ") + m.textInput.View())
		writeLine(divider)
	}

	maxVisible := m.maxVisibleItems()
	rendered := 0
	switch {
	case m.state.IsError:
		writeLine(lipgloss.NewStyle().Foreground(styles.StatusErrorColor).PaddingLeft(1).Render("Failed to load commands"))
		rendered++
	case len(m.state.Commands) == 0 && m.state.IsLoading:
		writeLine(mutedStyle.Italic(true).PaddingLeft(1).Render("Loading..."))
		rendered++
	case len(m.state.Commands) == 0:
		writeLine(mutedStyle.Italic(true).PaddingLeft(1).Render("No matching commands"))
		rendered++
	default:
		end := min(m.scrollOffset+maxVisible, len(m.state.Commands))
		for i := m.scrollOffset; i < end; i++ {
			writeLine(m.renderItem(m.state.Commands[i], i == m.cursor, contentWidth))
			rendered++
		}
	}
	// Fixed height keeps the box from jumping while filtering.
	for ; rendered < maxVisible; rendered++ {
		writeLine("")
	}

	footer := ""
	if m.scrollOffset+maxVisible < len(m.state.Commands) {
		footer = "↓ more"
	}
	if m.state.IsLoading && len(m.state.Commands) > 0 {
		footer = "loading..."
	}
	writeLine(lipgloss.PlaceHorizontal(contentWidth, lipgloss.Center, mutedStyle.Render(footer)))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(contentWidth)

	return boxStyle.Render(content.String())
}

// header is the breadcrumb of the open submenu, or the title at the root.
func (m Model) header(width int) string {
	if len(m.path) == 0 {
		return m.config.Title
	}
	titles := make([]string, len(m.path))
	for i, p := range m.path {
		titles[i] = p.Title
	}
	return styles.FormatBreadcrumb(titles, width-20)
}

func (m Model) renderItem(rc commands.ResolvedCommand, selected bool, width int) string {
	cmd := rc.Command
	if cmd.Render != nil {
		return cmd.Render(commands.RenderParams{Command: cmd, IsSubmenu: rc.IsSubmenu, IsActive: selected})
	}

	indicator := " "
	nameStyle := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor)
	if selected {
		indicator = styles.SelectionIndicatorStyle.Render(">")
		nameStyle = nameStyle.Bold(true).Foreground(styles.AccentColor)
	}

	icon := styles.TruncateString(cmd.Icon, 2)
	icon += strings.Repeat(" ", 3-lipgloss.Width(icon))

	suffix := ""
	if rc.IsSubmenu {
		suffix = " ›"
	}
	crumb := ""
	if rc.Breadcrumb != "" {
		crumb = styles.TruncateString(rc.Breadcrumb, width/3)
	}

	nameWidth := width - 1 - lipgloss.Width(icon) - lipgloss.Width(suffix) - lipgloss.Width(crumb) - 2
	name := styles.TruncateString(cmd.Title, max(nameWidth, 1))

	line := indicator + icon + nameStyle.Render(name+suffix)
	if crumb != "" {
		gap := max(width-lipgloss.Width(line)-lipgloss.Width(crumb)-1, 1)
		line += strings.Repeat(" ", gap) + lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render(crumb)
	}
	return line
}

// Overlay renders the palette on top of a background view. x and y are
// the anchor cell for overlay.Anchor.
func (m Model) Overlay(background string, position overlay.Position, x, y int) string {
	box := m.View()
	if background == "" {
		return lipgloss.Place(m.viewportWidth, m.viewportHeight, lipgloss.Center, lipgloss.Center, box)
	}
	return overlay.Place(overlay.Config{
		Width:    m.viewportWidth,
		Height:   m.viewportHeight,
		Position: position,
		PadY:     1,
		X:        x,
		Y:        y,
	}, box, background)
}
