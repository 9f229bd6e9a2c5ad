package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/vocabquiz/internal/app"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the quiz in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		resume, _ := cmd.Flags().GetString("resume")
		return runPlay(cmd, resume)
	},
}

func init() {
	playCmd.Flags().String("resume", "", "Resume a saved attempt by id")
}

func runPlay(cmd *cobra.Command, resume string) error {
	ctx := cmd.Context()

	svc, err := openServices(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	m := svc.newMachine(cfg.Learner)
	if resume != "" {
		if err := m.Resume(ctx, resume); err != nil {
			return fmt.Errorf("resume %s: %w", resume, err)
		}
	}

	return app.Run(app.Options{
		Machine:  m,
		Bank:     svc.bank,
		Mastery:  svc.mastery,
		Attempts: svc.store.AttemptRepo(),
		Learner:  cfg.Learner,
	})
}
