package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/vocabquiz/internal/api"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Auth.HMACSecret == "" {
			return errors.New("auth.hmac_secret is not configured")
		}
		tok, err := api.NewAuthenticator(cfg.Auth.HMACSecret, cfg.Auth.TokenTTL).Issue(cfg.Learner)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}
