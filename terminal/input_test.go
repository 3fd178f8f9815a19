package terminal

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		ev   tcell.Event
		want Action
	}{
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), ActionQuit},
		{"ctrl-c", tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), ActionQuit},
		{"q", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), ActionQuit},
		{"space", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), ActionTogglePause},
		{"other rune", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), ActionNone},
		{"resize", tcell.NewEventResize(100, 40), ActionResize},
		{"nil", nil, ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decode(tt.ev); got != tt.want {
				t.Errorf("Decode() = %v, want %v", got, tt.want)
			}
		})
	}
}
