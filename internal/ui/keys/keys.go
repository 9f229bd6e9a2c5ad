// Package keys defines the key bindings shared by screens and components.
package keys

import (
	"charm.land/bubbles/v2/key"

	"github.com/abhisek/vocabquiz/internal/ui/layout"
)

var (
	Up     = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑↓", "Navigate"))
	Down   = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↑↓", "Navigate"))
	Enter  = key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Select"))
	Toggle = key.NewBinding(key.WithKeys("space", " ", "x"), key.WithHelp("Space", "Toggle"))
	All    = key.NewBinding(key.WithKeys("a"), key.WithHelp("A", "All lessons"))
	Focus  = key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "Lessons/Drafts"))
	Save   = key.NewBinding(key.WithKeys("s"), key.WithHelp("S", "Save draft"))
	Delete = key.NewBinding(key.WithKeys("d"), key.WithHelp("D", "Delete draft"))
	Retry  = key.NewBinding(key.WithKeys("r"), key.WithHelp("R", "Retry missed"))
	Again  = key.NewBinding(key.WithKeys("n", "enter"), key.WithHelp("N", "New quiz"))
	Back   = key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Back"))
	Quit   = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("Ctrl+C", "Quit"))
)

// Hints converts bindings into footer hints, skipping disabled ones and
// repeated labels.
func Hints(bindings ...key.Binding) []layout.KeyHint {
	hints := make([]layout.KeyHint, 0, len(bindings))
	seen := make(map[string]bool)
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		if seen[h.Key] {
			continue
		}
		seen[h.Key] = true
		hints = append(hints, layout.KeyHint{Key: h.Key, Description: h.Desc})
	}
	return hints
}
