package terminal

import "github.com/gdamore/tcell/v2"

// Action is a host command decoded from a terminal event.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionTogglePause
	ActionResize
)

func (a Action) String() string {
	switch a {
	case ActionQuit:
		return "quit"
	case ActionTogglePause:
		return "toggle_pause"
	case ActionResize:
		return "resize"
	default:
		return "none"
	}
}

// Decode maps a tcell event to an Action. Esc, Ctrl-C and q quit;
// space pauses or resumes; a resize event resizes.
func Decode(ev tcell.Event) Action {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		return ActionResize
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return ActionQuit
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				return ActionQuit
			case ' ':
				return ActionTogglePause
			}
		}
	}
	return ActionNone
}
