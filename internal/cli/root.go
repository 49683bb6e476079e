package cli

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/linkclean/internal/app"
	"github.com/law-makers/linkclean/internal/config"
)

// appOptions are passed to app.New; tests use them to swap the store
var appOptions []app.Option

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "linkclean",
	Short: "Strip tracking parameters from links and preview them",
	Long: `Linkclean removes tracking parameters (utm_*, fbclid, gclid and friends)
from URLs while keeping everything else byte-for-byte, preserves YouTube
start times, and can fetch a lightweight preview of the cleaned link.

The list of blocked parameters is yours to edit and is saved in your OS
keyring (or ~/.linkclean when no keyring is available).`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Lazily initialize the application before running commands (avoid starting app for -h/help)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetAppFromCmd(cmd) != nil {
			return nil
		}

		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg, appOptions...)
		if err != nil {
			return err
		}

		SetApp(cmd, a)
		log.Debug().Str("command", cmd.CommandPath()).Msg("Application ready")
		return nil
	}

	// Ensure app is closed after command runs
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		a := GetAppFromCmd(cmd)
		if a == nil {
			return
		}
		_ = a.Close(cmd.Context())
		SetApp(cmd, nil)
	}
}

func init() {
	// Register centralized flags
	config.RegisterFlags(rootCmd)

	rootCmd.Flags().BoolP("help", "h", false, "Help for linkclean")
	rootCmd.Flags().Bool("version", false, "Version for linkclean")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpFunc(customHelpFunc)
	rootCmd.SetUsageFunc(customUsageFunc)
}
