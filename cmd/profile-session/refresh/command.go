package refresh

import (
	"github.com/spf13/cobra"

	"github.com/openkcm/profile-session/internal/business"
	"github.com/openkcm/profile-session/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"refresh",
		"Refresh the profile",
		"Prints the cached profile and fetches it from the account service when it is stale.",
		buildInfo,
		cmdutils.RunAsJob,
		business.RefreshMain,
	)
}
