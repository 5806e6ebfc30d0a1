package main

import (
	"context"
	"fmt"

	"whisper-client/internal/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newRemoteCommand() *cobra.Command {
	var skip, limit int

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Manage chat sessions stored on the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := core.RemoteSessionService.List(cmd.Context(), skip, limit)
			if err != nil {
				return describeError(err)
			}
			if len(sessions) == 0 {
				color.Yellow("No remote sessions")
				return nil
			}
			for _, s := range sessions {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-30s %s\n", s.Id, s.Title, s.CreatedAt)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&skip, "skip", 0, "Sessions to skip")
	cmd.Flags().IntVar(&limit, "limit", 100, "Sessions to list (at most 100)")

	cmd.AddCommand(&cobra.Command{
		Use:   "create <title>",
		Short: "Create a session on the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := core.RemoteSessionService.Create(cmd.Context(), &dto.CreateRemoteSessionRequest{Title: args[0]})
			if err != nil {
				return describeError(err)
			}
			color.Green("✔ Created %s (%s)", session.Title, session.Id)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a backend session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := args[1]
			session, err := core.RemoteSessionService.Update(cmd.Context(), args[0], &dto.UpdateRemoteSessionRequest{Title: &title})
			if err != nil {
				return describeError(err)
			}
			color.Green("✔ Renamed %s to %s", session.Id, session.Title)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a backend session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := core.RemoteSessionService.Delete(cmd.Context(), args[0]); err != nil {
				return describeError(err)
			}
			color.Green("✔ Deleted %s", args[0])
			return nil
		},
	})
	cmd.AddCommand(newRemoteTranscribeCommand())

	return cmd
}

func newRemoteTranscribeCommand() *cobra.Command {
	var (
		req         dto.TranscriptionRequest
		contentType string
		output      string
	)

	cmd := &cobra.Command{
		Use:   "transcribe <id> <audio-file>",
		Short: "Upload an audio file into a backend session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := audioFileFromPath(args[1], contentType)
			if err != nil {
				return err
			}
			req.File = file

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			done := printProgress(ctx, cmd.OutOrStdout())

			result, err := core.RemoteSessionService.Transcribe(ctx, args[0], &req)
			cancel()
			<-done
			if err != nil {
				return describeError(err)
			}
			return writeResult(cmd.OutOrStdout(), result, output)
		},
	}

	cmd.Flags().StringVarP(&req.Language, "language", "l", "kk", "Language hint (kk, ru, en)")
	cmd.Flags().BoolVar(&req.EnableDiarization, "diarize", false, "Separate speakers")
	cmd.Flags().StringVar(&contentType, "content-type", "", "Override the MIME type guessed from the extension")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or json")

	return cmd
}
