package signup

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/openkcm/profile-session/internal/business"
	"github.com/openkcm/profile-session/internal/cmdutils"
	"github.com/openkcm/profile-session/internal/config"
)

func Cmd(buildInfo string) *cobra.Command {
	var in business.SignupInput

	cmd := cmdutils.CobraCommand(
		"signup",
		"Create an account",
		"Creates an account at the account service. Signing up does not log in.",
		buildInfo,
		cmdutils.RunAsJob,
		func(ctx context.Context, cfg *config.Config) error {
			return business.SignupMain(in)(ctx, cfg)
		},
	)

	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password")
	cmd.Flags().StringVar(&in.ConfirmPassword, "confirm-password", "", "password confirmation")
	for _, name := range []string{"email", "name", "password", "confirm-password"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
