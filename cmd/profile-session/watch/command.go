package watch

import (
	"github.com/spf13/cobra"

	"github.com/openkcm/profile-session/internal/business"
	"github.com/openkcm/profile-session/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"watch",
		"Keep the profile fresh",
		"Refreshes the profile every watch interval and prints the events until interrupted.",
		buildInfo,
		cmdutils.RunAsService,
		business.WatchMain,
	)
}
