package components

import (
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/vocabquiz/internal/ui/keys"
	"github.com/abhisek/vocabquiz/internal/ui/theme"
)

// CheckItem is one row of a Checklist.
type CheckItem struct {
	ID       string
	Label    string
	Note     string // shown dimmed after the label
	Checked  bool
	Disabled bool
}

// Checklist is a vertical list of toggleable items.
type Checklist struct {
	Items    []CheckItem
	Selected int
	Focused  bool
}

// NewChecklist creates a focused checklist with the cursor on the first row.
func NewChecklist(items []CheckItem) Checklist {
	return Checklist{Items: items, Focused: true}
}

// Update moves the cursor and toggles items.
func (c Checklist) Update(msg tea.Msg) (Checklist, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || !c.Focused {
		return c, nil
	}

	switch {
	case key.Matches(kmsg, keys.Up):
		if c.Selected > 0 {
			c.Selected--
		}
	case key.Matches(kmsg, keys.Down):
		if c.Selected < len(c.Items)-1 {
			c.Selected++
		}
	case key.Matches(kmsg, keys.Toggle):
		if c.Selected < len(c.Items) && !c.Items[c.Selected].Disabled {
			c.Items[c.Selected].Checked = !c.Items[c.Selected].Checked
		}
	case key.Matches(kmsg, keys.All):
		c = c.ToggleAll()
	}
	return c, nil
}

// ToggleAll checks every enabled item, or clears them all when they are
// already all checked.
func (c Checklist) ToggleAll() Checklist {
	all := true
	for _, it := range c.Items {
		if !it.Disabled && !it.Checked {
			all = false
			break
		}
	}
	items := make([]CheckItem, len(c.Items))
	copy(items, c.Items)
	for i := range items {
		if !items[i].Disabled {
			items[i].Checked = !all
		}
	}
	c.Items = items
	return c
}

// CheckedIDs returns the ids of checked items in list order.
func (c Checklist) CheckedIDs() []string {
	var ids []string
	for _, it := range c.Items {
		if it.Checked && !it.Disabled {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

// View renders the checklist.
func (c Checklist) View() string {
	var b strings.Builder
	for i, it := range c.Items {
		box := "[ ]"
		if it.Checked {
			box = "[x]"
		}
		if it.Disabled {
			box = "[-]"
		}
		cursor := "  "
		if i == c.Selected && c.Focused {
			cursor = "▸ "
		}

		style := theme.Unselected
		switch {
		case it.Disabled:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == c.Selected && c.Focused:
			style = theme.Selected
		}
		line := style.Render(cursor + box + " " + it.Label)
		if it.Note != "" {
			line += "  " + theme.Hint.Render(it.Note)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
