package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/vocabquiz/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the learner's saved drafts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		repo := st.AttemptRepo()
		drafts, err := repo.ListForOwner(ctx, cfg.Learner, store.ListOpts{Status: store.StatusDraft})
		if err != nil {
			return err
		}
		for _, a := range drafts {
			if err := repo.Delete(ctx, a.ID); err != nil {
				return fmt.Errorf("delete draft %s: %w", a.ID, err)
			}
			logger.Info("draft deleted", zap.String("attempt_id", a.ID))
		}
		fmt.Printf("Deleted %d draft(s) for %s.\n", len(drafts), cfg.Learner)
		return nil
	},
}
