package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ErlanBelekov/auth-service/internal/domain"
)

type seedOptions struct {
	email    string
	name     string
	password string
}

// NewSeedCmd registers a user through the normal registration path, so the
// password is hashed exactly as the server would hash it.
func NewSeedCmd() *cobra.Command {
	opts := &seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a user for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cmd, cfg.SlogLevel())

			deps, err := openAuthDeps(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer deps.close()

			tok, err := deps.usecase.Register(cmd.Context(), opts.email, opts.name, opts.password)
			if errors.Is(err, domain.ErrDuplicateUser) {
				cmd.Printf("user %s already exists\n", opts.email)
				return nil
			}
			if err != nil {
				return err
			}

			cmd.Printf("created %s\naccess token: %s\n", opts.email, tok.AccessToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "seed@test.local", "user email")
	cmd.Flags().StringVar(&opts.name, "name", "Seed User", "display name")
	cmd.Flags().StringVar(&opts.password, "password", "", "plain-text password")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
