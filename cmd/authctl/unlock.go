package main

import (
	"github.com/spf13/cobra"
)

func NewUnlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <email>",
		Short: "Clear the login attempt window for an email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if err := deps.usecase.Unlock(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmd.Printf("unlocked %s\n", args[0])
			return nil
		},
	}
}
