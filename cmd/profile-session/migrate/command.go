package migrate

import (
	"github.com/spf13/cobra"

	"github.com/openkcm/profile-session/internal/business"
	"github.com/openkcm/profile-session/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"migrate",
		"Profile Session database migration",
		"Applies the schema of the PostgreSQL profile store.",
		buildInfo,
		cmdutils.RunAsJob,
		business.MigrateMain,
	)
}
