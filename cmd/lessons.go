package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/abhisek/vocabquiz/internal/ui/theme"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List lessons and which ones are unlocked",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := openServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		statuses, err := svc.mastery.Available(ctx, cfg.Learner, svc.bank)
		if err != nil {
			return err
		}

		t := newTable("Lesson", "Name", "Words", "Status")
		for _, st := range statuses {
			status := "available"
			switch {
			case st.Mastered:
				status = "mastered"
			case !st.Selectable:
				status = "locked"
			}
			t.Row(st.Lesson.ID, st.Lesson.Name, fmt.Sprint(len(st.Lesson.QuestionIDs)), status)
		}

		fmt.Printf("%s (bank %s) for %s\n", svc.bank.Title(), svc.bank.Version(), cfg.Learner)
		lipgloss.Println(t)
		return nil
	},
}

// newTable returns a table styled like the TUI.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}
