// Package editorview is the terminal editor: it feeds key presses to the
// composed editor, renders the document and opens the command palette when
// the slash menu opens.
package editorview

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/usekona/kona/internal/app"
	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/flags"
	"github.com/usekona/kona/internal/keys"
	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/plugin"
	"github.com/usekona/kona/internal/plugins/links"
	"github.com/usekona/kona/internal/ui/commandpalette"
	"github.com/usekona/kona/internal/ui/help"
	"github.com/usekona/kona/internal/ui/logoverlay"
	"github.com/usekona/kona/internal/ui/modal"
	"github.com/usekona/kona/internal/ui/overlay"
	"github.com/usekona/kona/internal/ui/styles"
	"github.com/usekona/kona/internal/ui/toaster"
)

const (
	sidebarWidth    = 28
	sidebarMinWidth = 90 // Terminal width below which the sidebar is hidden
)

// Config configures the editor view.
type Config struct {
	Kona *app.Kona
	// Path is where ctrl+s writes. Empty disables saving.
	Path     string
	Debounce time.Duration
	// Reload delivers changed command files from a watcher.
	Reload    <-chan []string
	Shortcuts bool // Shown in the help overlay
	Context   context.Context
	// Flags gates optional UI. Nil uses the flag defaults.
	Flags *flags.Registry
	// Logs enables the log overlay (f12).
	Logs bool
}

// SavedMsg reports the outcome of a save.
type SavedMsg struct {
	Path string
	Rev  int
	Err  error
}

// ReloadMsg carries command files that changed on disk.
type ReloadMsg struct {
	Files []string
}

type modalKind int

const (
	modalNone modalKind = iota
	modalLink
	modalQuit
)

// revisions counts document edits. It is shared by every copy of Model.
type revisions struct {
	current int
	saved   int
}

// Model is the editor view state.
type Model struct {
	cfg  Config
	kona *app.Kona
	ctx  context.Context
	revs *revisions

	viewport viewport.Model
	palette  commandpalette.Model
	// paletteOpen tracks the menu open that palette belongs to.
	paletteOpen bool
	openID      int

	toaster  toaster.Model
	help     help.Model
	showHelp bool

	modal     modal.Model
	modalKind modalKind
	logs      logoverlay.Model
	zones     *zone.Manager

	width  int
	height int
}

// New returns the editor view for cfg.Kona.
func New(cfg Config) Model {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Flags == nil {
		cfg.Flags = flags.New(nil)
	}
	revs := &revisions{}
	ed := cfg.Kona.Editor
	ed.OnChange(func(ev document.ChangeEvent) {
		for _, op := range ev.Operations {
			if op.Type != document.OpSetSelection {
				revs.current++
				return
			}
		}
	})
	if ed.Selection() == nil {
		if err := ed.Focus(false); err != nil {
			log.ErrorErr(log.CatUI, "focus document failed", err)
		}
	}
	return Model{
		cfg:      cfg,
		kona:     cfg.Kona,
		ctx:      ctx,
		revs:     revs,
		viewport: viewport.New(0, 0),
		toaster:  toaster.New(),
		help:     help.New(cfg.Kona.Menu.Trigger(), cfg.Shortcuts),
		logs:     logoverlay.New(ctx),
		zones:    zone.New(),
	}
}

// Close releases the palette and the mouse zone tracker.
func (m Model) Close() {
	m.closePalette()
	m.zones.Close()
}

// Init starts listening for command file changes and log entries.
func (m Model) Init() tea.Cmd {
	if m.cfg.Logs {
		return tea.Batch(m.waitReload(), m.logs.Init())
	}
	return m.waitReload()
}

func (m Model) waitReload() tea.Cmd {
	if m.cfg.Reload == nil {
		return nil
	}
	ch := m.cfg.Reload
	return func() tea.Msg {
		files, ok := <-ch
		if !ok {
			return nil
		}
		return ReloadMsg{Files: files}
	}
}

// Dirty reports unsaved edits.
func (m Model) Dirty() bool { return m.revs.current != m.revs.saved }

// PaletteOpen reports whether the command palette is showing.
func (m Model) PaletteOpen() bool { return m.paletteOpen }

// ModalOpen reports whether a dialog is showing.
func (m Model) ModalOpen() bool { return m.modalKind != modalNone }

// Palette returns the open palette.
func (m Model) Palette() commandpalette.Model { return m.palette }

// Update handles messages for the editor view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help = m.help.SetSize(msg.Width, msg.Height)
		m.modal = m.modal.SetSize(msg.Width, msg.Height)
		m.logs = m.logs.SetSize(msg.Width, msg.Height)
		if m.paletteOpen {
			m.palette = m.palette.SetSize(msg.Width, msg.Height)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.modalKind == modalNone || m.showHelp || m.logs.Visible() {
			return m, nil
		}
		var cmd tea.Cmd
		m.modal, cmd = m.modal.Update(msg)
		return m, cmd

	case commandpalette.StateMsg:
		if !m.paletteOpen {
			return m, nil
		}
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd

	case commandpalette.SelectMsg:
		if !m.paletteOpen {
			return m, nil
		}
		log.Debug(log.CatUI, "running command", "key", msg.Command.Key)
		m.kona.Menu.Run(m.kona.Editor.Editor, msg.Command.Command)
		return m.syncPalette()

	case commandpalette.CancelMsg:
		m.kona.Menu.Close()
		return m.syncPalette()

	case SavedMsg:
		if msg.Err != nil {
			log.ErrorErr(log.CatUI, "save failed", msg.Err, "path", msg.Path)
			return m.toast(fmt.Sprintf("Save failed: %v", msg.Err), toaster.StyleError)
		}
		m.revs.saved = msg.Rev
		return m.toast("Saved "+filepath.Base(msg.Path), toaster.StyleSuccess)

	case ReloadMsg:
		var (
			model tea.Model
			cmd   tea.Cmd
		)
		if err := m.kona.ReloadCommands(); err != nil {
			model, cmd = m.toast(fmt.Sprintf("Commands not reloaded: %v", err), toaster.StyleError)
		} else {
			model, cmd = m.toast("Commands reloaded", toaster.StyleInfo)
		}
		return model, tea.Batch(cmd, m.waitReload())

	case toaster.DismissMsg:
		m.toaster = m.toaster.Dismiss(msg)
		return m, nil

	case modal.SubmitMsg:
		return m.submitModal(msg)

	case modal.CancelMsg:
		m.modalKind = modalNone
		return m, nil

	case log.LogEvent:
		var cmd tea.Cmd
		m.logs, cmd = m.logs.Update(msg)
		return m, cmd

	case logoverlay.CloseMsg:
		return m, nil
	}

	// Cursor blinks for the dialog inputs.
	if m.modalKind != modalNone {
		var cmd tea.Cmd
		m.modal, cmd = m.modal.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) openModal(kind modalKind, cfg modal.Config) (tea.Model, tea.Cmd) {
	cfg.Zones = m.zones
	m.modal = modal.New(cfg).SetSize(m.width, m.height)
	m.modalKind = kind
	return m, m.modal.Init()
}

func (m Model) openLinkModal() (tea.Model, tea.Cmd) {
	current := ""
	if entry, ok := links.Active(m.kona.Editor.Editor); ok {
		current = entry.Element().StringProp(links.PropURL)
	}
	return m.openModal(modalLink, modal.Config{
		Title: "Link",
		Inputs: []modal.InputConfig{{
			Key:         "url",
			Label:       "URL",
			Placeholder: "https://",
			Value:       current,
			Validate: func(s string) error {
				if !links.IsURL(s) {
					return links.ErrInvalidURL
				}
				return nil
			},
		}},
	})
}

func (m Model) submitModal(msg modal.SubmitMsg) (tea.Model, tea.Cmd) {
	kind := m.modalKind
	m.modalKind = modalNone
	switch kind {
	case modalQuit:
		m.closePalette()
		return m, tea.Quit
	case modalLink:
		if err := links.AddLink(m.kona.Editor.Editor, msg.Values["url"]); err != nil {
			log.ErrorErr(log.CatUI, "add link failed", err)
			return m.toast(fmt.Sprintf("Link failed: %v", err), toaster.StyleError)
		}
		return m.syncPalette()
	}
	return m, nil
}

func (m Model) toast(message string, style toaster.Style) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.toaster, cmd = m.toaster.Show(message, style, toaster.DefaultDuration)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if key.Matches(msg, keys.Editor.Help) || msg.Type == tea.KeyEsc {
			m.showHelp = false
		}
		return m, nil
	}
	if m.logs.Visible() {
		var cmd tea.Cmd
		m.logs, cmd = m.logs.Update(msg)
		return m, cmd
	}
	if m.modalKind != modalNone {
		var cmd tea.Cmd
		m.modal, cmd = m.modal.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Editor.Quit):
		if m.Dirty() && m.cfg.Flags.Enabled(flags.FlagQuitConfirm) {
			return m.openModal(modalQuit, modal.Config{
				Title:          "Quit",
				Message:        "Discard unsaved changes?",
				ConfirmVariant: modal.ButtonDanger,
				ConfirmLabel:   "Discard",
			})
		}
		m.closePalette()
		return m, tea.Quit

	case key.Matches(msg, keys.Editor.Link):
		return m.openLinkModal()

	case m.cfg.Logs && key.Matches(msg, keys.Editor.Logs):
		m.logs = m.logs.Toggle()
		return m, nil

	case key.Matches(msg, keys.Editor.Save):
		return m, m.save()

	case key.Matches(msg, keys.Editor.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, keys.Editor.Palette):
		if !m.paletteOpen {
			m.kona.Editor.InsertText(m.kona.Menu.Trigger())
		}
		return m.syncPalette()

	case m.paletteOpen && commandpalette.Handles(msg):
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd

	case msg.Paste:
		if err := m.kona.Editor.Paste(&plugin.PasteEvent{Text: string(msg.Runes)}); err != nil {
			log.ErrorErr(log.CatUI, "paste failed", err)
		}
		return m.syncPalette()
	}

	m.kona.Editor.KeyDown(m.ctx, plugin.NewKeyEvent(msg))
	return m.syncPalette()
}

// syncPalette opens, filters or closes the palette to match the menu.
func (m Model) syncPalette() (tea.Model, tea.Cmd) {
	st := m.kona.Menu.Store().Get()
	switch {
	case st.IsOpen && (!m.paletteOpen || st.OpenID != m.openID):
		m.closePalette()
		m.palette = commandpalette.New(commandpalette.Config{
			Root:            m.kona.Menu.Commands(),
			Editor:          m.kona.Editor.Editor,
			Debounce:        m.cfg.Debounce,
			Filter:          st.Filter,
			MaxVisibleItems: 8,
		}).SetSize(m.width, m.height)
		m.paletteOpen, m.openID = true, st.OpenID
		return m, m.palette.Init()
	case st.IsOpen:
		m.palette = m.palette.SetFilter(st.Filter)
	case m.paletteOpen:
		m.closePalette()
		m.paletteOpen = false
	}
	return m, nil
}

func (m Model) closePalette() {
	if m.paletteOpen {
		m.palette.Close()
	}
}

func (m Model) save() tea.Cmd {
	path := m.cfg.Path
	if path == "" {
		return func() tea.Msg { return SavedMsg{Err: fmt.Errorf("no file to save to")} }
	}
	markup := m.kona.Editor.Serialize()
	rev := m.revs.current
	return func() tea.Msg {
		err := os.WriteFile(path, []byte(markup+"\n"), 0o644)
		return SavedMsg{Path: path, Rev: rev, Err: err}
	}
}

// View renders the editor.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.showHelp {
		return m.help.View()
	}

	inner := m.width - 2
	docWidth := inner
	ui := m.kona.Editor.UI(false)
	showSidebar := m.cfg.Flags.Enabled(flags.FlagSidebar) && ui != "" && m.width >= sidebarMinWidth
	if showSidebar {
		docWidth = inner - sidebarWidth - 1
	}

	doc, cursorLine := m.renderDocument(docWidth)
	vp := m.viewport
	vp.Width, vp.Height = docWidth, m.height-3
	vp.SetContent(doc)
	switch {
	case cursorLine < vp.YOffset:
		vp.SetYOffset(cursorLine)
	case cursorLine >= vp.YOffset+vp.Height:
		vp.SetYOffset(cursorLine - vp.Height + 1)
	}

	content := vp.View()
	if showSidebar {
		side := lipgloss.NewStyle().
			Width(sidebarWidth).
			Height(vp.Height).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(styles.BorderDefaultColor).
			Render(ui)
		content = lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Width(docWidth).Render(content), side)
	}

	title := "untitled"
	if m.cfg.Path != "" {
		title = filepath.Base(m.cfg.Path)
	}
	body := styles.RenderWithTitleBorder(content, title, m.width, m.height-1, !m.paletteOpen)
	screen := body + "\n" + m.statusBar()

	if m.paletteOpen {
		screen = m.palette.Overlay(screen, overlay.Anchor, 2, 1+cursorLine-vp.YOffset)
	}
	if m.modalKind != modalNone {
		screen = m.modal.Overlay(screen)
	}
	screen = m.logs.Overlay(screen)
	return m.zones.Scan(m.toaster.Overlay(screen, m.width, m.height))
}

// renderDocument wraps each block to width and returns the first line of
// the block holding the cursor.
func (m Model) renderDocument(width int) (string, int) {
	wrap := lipgloss.NewStyle().Width(max(width, 1))
	blocks := m.kona.Editor.RenderBlocks()
	focus := -1
	if sel := m.kona.Editor.Selection(); sel != nil && len(sel.Focus.Path) > 0 {
		focus = sel.Focus.Path[0]
	}
	cursorLine, line := 0, 0
	for i, b := range blocks {
		blocks[i] = wrap.Render(b)
		if i == focus {
			cursorLine = line
		}
		line += lipgloss.Height(blocks[i])
	}
	return strings.Join(blocks, "\n"), cursorLine
}

func (m Model) statusBar() string {
	parts := []string{}
	if m.Dirty() {
		parts = append(parts, "● modified")
	}
	parts = append(parts,
		keys.Editor.Save.Help().Key+" save",
		m.kona.Menu.Trigger()+" commands",
		keys.Editor.Help.Help().Key+" help",
	)
	return styles.StatusBarStyle.Width(m.width).Render(strings.Join(parts, "  "))
}
