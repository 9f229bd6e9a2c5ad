package cmd

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/abhisek/vocabquiz/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the learner's attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		statusFlag, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		status := store.Status(statusFlag)
		if status != "" && !status.Valid() {
			return fmt.Errorf("unknown status %q", statusFlag)
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		attempts, err := st.AttemptRepo().ListForOwner(ctx, cfg.Learner, store.ListOpts{Status: status, Limit: limit})
		if err != nil {
			return err
		}
		if len(attempts) == 0 {
			fmt.Println("No attempts yet.")
			return nil
		}

		t := newTable("Attempt", "Lessons", "Status", "Progress", "Score", "Started")
		for _, a := range attempts {
			score := "-"
			if a.Score != nil {
				score = fmt.Sprintf("%d/%d", *a.Score, len(a.Questions))
			}
			lessons := strings.Join(a.SelectedLessons, ",")
			if a.ParentID != "" {
				lessons += " (retry)"
			}
			t.Row(a.ID, lessons, string(a.Status),
				fmt.Sprintf("%d/%d", a.CurrentIndex, len(a.Questions)),
				score, a.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		lipgloss.Println(t)

		completed := lo.Filter(attempts, func(a store.Attempt, _ int) bool {
			return a.Status == store.StatusCompleted && a.Score != nil
		})
		if len(completed) > 0 {
			correct := lo.SumBy(completed, func(a store.Attempt) int { return *a.Score })
			total := lo.SumBy(completed, func(a store.Attempt) int { return len(a.Questions) })
			fmt.Printf("%d completed, %d/%d answers correct\n", len(completed), correct, total)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().String("status", "", "Only show attempts with this status (in_progress, draft, completed)")
	statsCmd.Flags().Int("limit", 0, "Maximum number of attempts to show")
}
