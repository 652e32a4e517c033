// Package controls maps toolbar keyboard shortcuts to editor actions.
package controls

import "strings"

// Action is an editor command a shortcut resolves to
type Action string

const (
	ActionNone           Action = "none"
	ActionUndo           Action = "undo"
	ActionRedo           Action = "redo"
	ActionDeleteSelected Action = "delete_selected"
)

// KeyEvent is a key press as reported by the browser. Key follows
// KeyboardEvent.key ("z", "Z", "Delete", "Backspace").
type KeyEvent struct {
	Key         string `json:"key" validate:"required"`
	Ctrl        bool   `json:"ctrl"`
	Meta        bool   `json:"meta"`
	Shift       bool   `json:"shift"`
	InTextField bool   `json:"in_text_field"`
}

// Primary reports whether the platform's primary modifier is held. Ctrl
// and Cmd are treated alike.
func (e KeyEvent) Primary() bool {
	return e.Ctrl || e.Meta
}

// Resolve returns the action bound to e:
//
//	primary+Z          undo
//	primary+Shift+Z    redo
//	primary+Y          redo
//	Delete, Backspace  delete selection, unless typing in a text field
//
// Letter keys match either case since Shift reports "Z".
func Resolve(e KeyEvent) Action {
	key := e.Key
	if len(key) == 1 {
		key = strings.ToLower(key)
	}

	switch {
	case e.Primary() && key == "z" && !e.Shift:
		return ActionUndo
	case e.Primary() && key == "z" && e.Shift:
		return ActionRedo
	case e.Primary() && key == "y":
		return ActionRedo
	case key == "Delete" || key == "Backspace":
		if e.InTextField {
			return ActionNone
		}
		return ActionDeleteSelected
	}
	return ActionNone
}
