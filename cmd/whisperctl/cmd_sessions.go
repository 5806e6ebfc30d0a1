package main

import (
	"fmt"
	"os"

	"whisper-client/internal/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newSessionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List and manage chat sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions := core.ChatSessionService.Sessions()
			if len(sessions) == 0 {
				color.Yellow("No chat sessions")
				return nil
			}
			current := core.ChatSessionService.CurrentSession()
			for _, s := range sessions {
				marker := " "
				if current != nil && current.Id == s.Id {
					marker = color.GreenString("*")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %-24s %-3s %d transcriptions\n",
					marker, s.Id, s.Name, s.Language, len(s.Transcriptions))
			}
			return nil
		},
	}

	cmd.AddCommand(newSessionsCreateCommand())
	cmd.AddCommand(newSessionsUseCommand())
	cmd.AddCommand(newSessionsDeleteCommand())
	cmd.AddCommand(newSessionsStatsCommand())
	cmd.AddCommand(newSessionsExportCommand())
	cmd.AddCommand(newSessionsImportCommand())

	return cmd
}

func newSessionsCreateCommand() *cobra.Command {
	req := &dto.CreateChatSessionRequest{}

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a session and make it current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name = args[0]
			session, err := core.ChatSessionService.CreateSession(cmd.Context(), req)
			if err != nil {
				return describeError(err)
			}
			color.Green("✔ Created %s (%s)", session.Name, session.Id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Language, "language", "l", "en", "Session language (kk, ru, en)")
	cmd.Flags().StringVarP(&req.Description, "description", "d", "", "Description")
	cmd.Flags().BoolVar(&req.Settings.EnableDiarization, "diarize", false, "Separate speakers by default")
	cmd.Flags().BoolVar(&req.Settings.EnableEmotionDetection, "emotions", false, "Detect emotions by default")

	return cmd
}

func newSessionsUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use <id>",
		Short: "Make a session current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := core.ChatSessionService.SetCurrentSession(cmd.Context(), args[0]); err != nil {
				return describeError(err)
			}
			color.Green("✔ Switched to %s", args[0])
			return nil
		},
	}
}

func newSessionsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session and its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := core.ChatSessionService.DeleteSession(cmd.Context(), args[0]); err != nil {
				return describeError(err)
			}
			color.Yellow("Deleted %s", args[0])
			return nil
		},
	}
}

func newSessionsStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <id>",
		Short: "Summarize a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := core.ChatSessionService.GetSessionStats(cmd.Context(), args[0])
			if err != nil {
				return describeError(err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Messages:        %d (%d audio)\n", stats.TotalMessages, stats.AudioMessages)
			fmt.Fprintf(w, "Transcriptions:  %d\n", stats.TotalTranscriptions)
			fmt.Fprintf(w, "Total duration:  %ds\n", stats.TotalDuration)
			fmt.Fprintf(w, "Unique speakers: %d\n", stats.UniqueSpeakers)
			for emotion, n := range stats.Emotions {
				fmt.Fprintf(w, "  %-14s %d\n", emotion, n)
			}
			return nil
		},
	}
}

func newSessionsExportCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a session and its messages as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := core.ChatSessionService.ExportSession(cmd.Context(), args[0])
			if err != nil {
				return describeError(err)
			}
			if outPath == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), data)
				return err
			}
			if err := os.WriteFile(outPath, []byte(data), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			color.Green("✔ Exported to %s", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")

	return cmd
}

func newSessionsImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a previously exported session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			session, err := core.ChatSessionService.ImportSession(cmd.Context(), string(data))
			if err != nil {
				return describeError(err)
			}
			color.Green("✔ Imported %s as %s", session.Name, session.Id)
			return nil
		},
	}
}
