package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"whisper-client/internal/bootstrap"
	"whisper-client/internal/config"
	"whisper-client/internal/pkg/logger"

	"github.com/spf13/cobra"
)

var version = "dev"

// core is opened by the root command before any subcommand runs.
var core *bootstrap.Core

func newRootCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "whisperctl",
		Short: "whisperctl - terminal client for the transcription backend",
		Long: `whisperctl drives the same client state as the web UI from a terminal.

It signs in against the transcription backend, uploads audio files for
transcription and manages chat sessions. State is stored with the driver
configured by STORAGE_DRIVER, so the CLI and the local API server share it.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		// A one-shot command has nobody to stream chat frames to.
		cfg.Backend.WebSocketURL = ""
		cfg.Transcription.ProgressClearDelay = 0

		var log logger.ILogger = logger.NewNopLogger()
		if verbose {
			log = logger.NewZapLogger(cfg.App.LogFilePath, false)
		}

		c, err := bootstrap.NewCore(cmd.Context(), cfg, log)
		if err != nil {
			return fmt.Errorf("opening client state: %w", err)
		}
		core = c
		return nil
	}

	cmd.AddCommand(newSignInCommand())
	cmd.AddCommand(newSignUpCommand())
	cmd.AddCommand(newLogoutCommand())
	cmd.AddCommand(newWhoAmICommand())
	cmd.AddCommand(newTranscribeCommand())
	cmd.AddCommand(newHistoryCommand())
	cmd.AddCommand(newSessionsCommand())
	cmd.AddCommand(newRemoteCommand())

	return cmd
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCommand().ExecuteContext(ctx)
	if core != nil {
		if cerr := core.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
