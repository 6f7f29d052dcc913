package reset

import (
	"github.com/spf13/cobra"

	"github.com/openkcm/profile-session/internal/business"
	"github.com/openkcm/profile-session/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"reset",
		"Drop the stored session",
		"Removes the token, the cached profile and the fetch time of the configured namespace. The next refresh needs a new login.",
		buildInfo,
		cmdutils.RunAsJob,
		business.ResetMain,
	)
}
