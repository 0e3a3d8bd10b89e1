package commands

import (
	"github.com/rivo/uniseg"

	"github.com/usekona/kona/internal/document"
)

// Actions are the edits a command runs. Set, Insert and Wrap first remove
// the typed trigger and filter.
type Actions struct {
	ed      *document.Editor
	typed   string
	trigger bool
}

// NewActions returns actions for ed. typed is the trigger plus filter text
// in front of the cursor; it is removed only when trigger is true.
func NewActions(ed *document.Editor, typed string, trigger bool) Actions {
	return Actions{ed: ed, typed: typed, trigger: trigger}
}

// RemoveCommand deletes the typed trigger and filter before the cursor.
func (a Actions) RemoveCommand() error {
	sel := a.ed.Selection()
	if sel == nil {
		return document.ErrNoSelection
	}
	distance := 1
	if a.trigger {
		distance = uniseg.GraphemeClusterCount(a.typed)
	}
	return a.ed.Delete(document.DeleteOptions{
		At:       sel.Focus,
		Unit:     document.UnitCharacter,
		Distance: distance,
		Reverse:  true,
	})
}

// Set sets props on the selected blocks.
func (a Actions) Set(props document.Props, opts document.NodeOptions) error {
	if err := a.RemoveCommand(); err != nil {
		return err
	}
	return a.ed.SetNodes(props, opts)
}

// Insert inserts nodes at the cursor.
func (a Actions) Insert(nodes ...document.Node) error {
	if err := a.RemoveCommand(); err != nil {
		return err
	}
	return a.ed.InsertNodes(nodes, document.NodeOptions{})
}

// Wrap wraps the selected blocks in el.
func (a Actions) Wrap(el *document.Element, opts document.NodeOptions) error {
	if err := a.RemoveCommand(); err != nil {
		return err
	}
	return a.ed.WrapNodes(el, opts)
}

// InsertText types text at the cursor.
func (a Actions) InsertText(text string) {
	a.ed.InsertText(text)
}
