package commands

import (
	"regexp"
	"slices"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/plugin"
	"github.com/usekona/kona/internal/pubsub"
	"github.com/usekona/kona/internal/ui/styles"
)

// DefaultTrigger opens the menu when typed.
const DefaultTrigger = "/"

// MenuState is the menu's observable state.
type MenuState struct {
	IsOpen bool
	// Filter is the text after the last trigger in the current block.
	// HasFilter is false when the block holds no trigger.
	Filter    string
	HasFilter bool
	// OpenID changes every time the menu opens.
	OpenID int
}

// Options configures the menu plugin.
type Options struct {
	Commands []Command
	// Trigger is a single character. Defaults to DefaultTrigger.
	Trigger string
	// IgnoreNodes lists block types in which the trigger does nothing.
	IgnoreNodes []string
}

// Menu is the slash command plugin.
type Menu struct {
	opts    Options
	store   *pubsub.Store[MenuState]
	pattern *regexp.Regexp
}

// New creates the menu plugin.
func New(opts Options) *Menu {
	if opts.Trigger == "" {
		opts.Trigger = DefaultTrigger
	}
	t := regexp.QuoteMeta(opts.Trigger)
	return &Menu{
		opts:    opts,
		store:   pubsub.NewStore(MenuState{}),
		pattern: regexp.MustCompile(t + `([^` + t + `]*)$`),
	}
}

// Plugin returns the plugin value to compose.
func (m *Menu) Plugin() plugin.Plugin {
	return plugin.Plugin{
		Name:     "commands",
		Init:     m.init,
		Handlers: plugin.Handlers{OnKeyDown: m.onKeyDown},
		UI:       m.ui,
	}
}

// Store holds the menu state.
func (m *Menu) Store() *pubsub.Store[MenuState] { return m.store }

// Commands returns the root commands.
func (m *Menu) Commands() []Command { return m.opts.Commands }

// SetCommands replaces the root commands. An open menu keeps its state.
func (m *Menu) SetCommands(cmds []Command) { m.opts.Commands = cmds }

// Trigger returns the character that opens the menu.
func (m *Menu) Trigger() string { return m.opts.Trigger }

func (m *Menu) init(ed *document.Editor) *document.Editor {
	ed.WrapInsertText(func(next document.InsertTextFunc) document.InsertTextFunc {
		return func(text string) {
			if text == m.opts.Trigger && !m.ignored(ed) {
				st := m.store.Update(func(s MenuState) MenuState {
					return MenuState{IsOpen: true, HasFilter: true, OpenID: s.OpenID + 1}
				})
				log.Debug(log.CatCommands, "menu opened", "open_id", st.OpenID)
			}
			next(text)
		}
	})
	ed.OnChange(func(document.ChangeEvent) { m.track(ed) })
	return ed
}

func (m *Menu) ignored(ed *document.Editor) bool {
	block, ok := ed.Above(document.AboveOptions{Match: ed.MatchBlock()})
	return ok && slices.Contains(m.opts.IgnoreNodes, block.Element().Type)
}

// track follows the filter typed after the trigger. The menu closes once
// the trigger is gone from the current block.
func (m *Menu) track(ed *document.Editor) {
	st := m.store.Get()
	if !st.IsOpen {
		return
	}
	match := m.pattern.FindStringSubmatch(currentText(ed))
	if match == nil {
		m.Close()
		return
	}
	if st.HasFilter && st.Filter == match[1] {
		return
	}
	st.Filter, st.HasFilter = match[1], true
	m.store.Set(st)
}

func currentText(ed *document.Editor) string {
	block, ok := ed.Above(document.AboveOptions{Match: ed.MatchBlock()})
	if !ok {
		return ""
	}
	return ed.String(block.Path)
}

// Close closes the menu.
func (m *Menu) Close() {
	if !m.store.Get().IsOpen {
		return
	}
	m.store.Update(func(s MenuState) MenuState {
		return MenuState{OpenID: s.OpenID}
	})
}

// Actions returns the actions for the current menu state.
func (m *Menu) Actions(ed *document.Editor) Actions {
	st := m.store.Get()
	return NewActions(ed, m.opts.Trigger+st.Filter, st.HasFilter)
}

// Run runs a command's action and closes the menu. Submenus do nothing.
func (m *Menu) Run(ed *document.Editor, cmd Command) {
	if cmd.Action == nil {
		return
	}
	cmd.Action(m.Actions(ed), ed)
	m.Close()
}

func (m *Menu) onKeyDown(ev *plugin.KeyEvent, _ *document.Editor) {
	if m.store.Get().IsOpen && ev.String() == "esc" {
		ev.PreventDefault()
		m.Close()
	}
}

func (m *Menu) ui(params plugin.UIParams) string {
	st := m.store.Get()
	if !st.IsOpen || params.ReadOnly {
		return ""
	}
	return styles.StatusBarStyle.Render(m.opts.Trigger + st.Filter)
}
