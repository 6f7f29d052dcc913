package update

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/openkcm/profile-session/internal/business"
	"github.com/openkcm/profile-session/internal/cmdutils"
	"github.com/openkcm/profile-session/internal/config"
	"github.com/openkcm/profile-session/internal/profile"
)

func Cmd(buildInfo string) *cobra.Command {
	var name, location, birthdate string

	var cmd *cobra.Command
	cmd = cmdutils.CobraCommand(
		"update",
		"Update the profile",
		"Merges the given fields into the cached profile and sends the result to the account service. "+
			"Fields that are not given keep their cached value; an empty value clears the field.",
		buildInfo,
		cmdutils.RunAsJob,
		func(ctx context.Context, cfg *config.Config) error {
			var u profile.ProfileUpdate
			if cmd.Flags().Changed("name") {
				u.Name = &name
			}
			if cmd.Flags().Changed("location") {
				u.Location = &location
			}
			if cmd.Flags().Changed("birthdate") {
				u.Birthdate = &birthdate
			}

			return business.UpdateMain(u)(ctx, cfg)
		},
	)

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&location, "location", "", "location")
	cmd.Flags().StringVar(&birthdate, "birthdate", "", "birthdate as YYYY-MM-DD")

	return cmd
}
