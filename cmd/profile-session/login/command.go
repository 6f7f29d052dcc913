package login

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/openkcm/profile-session/internal/business"
	"github.com/openkcm/profile-session/internal/cmdutils"
	"github.com/openkcm/profile-session/internal/config"
)

func Cmd(buildInfo string) *cobra.Command {
	var (
		email, password string
		refresh         bool
	)

	cmd := cmdutils.CobraCommand(
		"login",
		"Log in",
		"Authenticates at the account service and stores the session token. The cached profile is invalidated.",
		buildInfo,
		cmdutils.RunAsJob,
		func(ctx context.Context, cfg *config.Config) error {
			return business.LoginMain(email, password, refresh)(ctx, cfg)
		},
	)

	cmd.Flags().StringVar(&email, "email", "", "account email, defaults to account.email")
	cmd.Flags().StringVar(&password, "password", "", "account password, defaults to account.password")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "refresh the profile after a successful login")

	return cmd
}
