package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/openkcm/common-sdk/pkg/utils"
	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/profile-session/cmd/profile-session/login"
	"github.com/openkcm/profile-session/cmd/profile-session/migrate"
	"github.com/openkcm/profile-session/cmd/profile-session/refresh"
	"github.com/openkcm/profile-session/cmd/profile-session/reset"
	"github.com/openkcm/profile-session/cmd/profile-session/signup"
	"github.com/openkcm/profile-session/cmd/profile-session/update"
	"github.com/openkcm/profile-session/cmd/profile-session/watch"
)

// BuildInfo will be set by the build system
var BuildInfo = "{}"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Profile Session Version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		value, err := utils.ExtractFromComplexValue(BuildInfo)
		if err != nil {
			return err
		}

		slog.InfoContext(cmd.Context(), value)

		return nil
	},
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "profile-session",
		Short:         "Profile Session",
		Long:          "Profile Session keeps a locally cached user profile in sync with the account service.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		versionCmd,
		signup.Cmd(BuildInfo),
		login.Cmd(BuildInfo),
		update.Cmd(BuildInfo),
		refresh.Cmd(BuildInfo),
		reset.Cmd(BuildInfo),
		watch.Cmd(BuildInfo),
		migrate.Cmd(BuildInfo),
	)

	return cmd
}

func execute() error {
	ctx, cancelOnSignal := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancelOnSignal()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		slogctx.Error(ctx, "failed to run the command", "error", err)
		_, _ = fmt.Fprintln(os.Stderr, err)

		return err
	}

	return nil
}

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
