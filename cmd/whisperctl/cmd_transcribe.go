package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"whisper-client/internal/dto"
	"whisper-client/internal/entity"
	"whisper-client/pkg/events"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// contentTypes maps audio extensions to the MIME types the backend accepts.
var contentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".m4a":  "audio/m4a",
	".aac":  "audio/aac",
	".ogg":  "audio/ogg",
	".webm": "audio/webm",
}

func newTranscribeCommand() *cobra.Command {
	var (
		req         dto.TranscriptionRequest
		contentType string
		output      string
		attach      bool
	)

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Upload an audio file for transcription",
		Long: `Upload an audio file for transcription and print the result.

Progress is printed while the job runs. With --attach the result is also
added to the current chat session.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := audioFileFromPath(args[0], contentType)
			if err != nil {
				return err
			}
			req.File = file

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			done := printProgress(ctx, cmd.OutOrStdout())

			result, err := core.TranscriptionService.TranscribeAudio(ctx, &req)
			cancel()
			<-done
			if err != nil {
				return describeError(err)
			}

			if attach {
				if err := core.ChatSessionService.AddTranscriptionToSession(cmd.Context(), result); err != nil {
					return describeError(err)
				}
			}
			return writeResult(cmd.OutOrStdout(), result, output)
		},
	}

	cmd.Flags().StringVarP(&req.Language, "language", "l", "", "Language hint (kk, ru, en)")
	cmd.Flags().StringVar(&req.Task, "task", "transcribe", "transcribe or translate")
	cmd.Flags().BoolVar(&req.EnableDiarization, "diarize", false, "Separate speakers")
	cmd.Flags().StringVar(&contentType, "content-type", "", "Override the MIME type guessed from the extension")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&attach, "attach", false, "Add the result to the current chat session")

	return cmd
}

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past transcriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			history := core.TranscriptionService.History()
			if len(history) == 0 {
				color.Yellow("No transcriptions yet")
				return nil
			}
			for _, r := range history {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14d %-30s %-3s %6.1fs  %s\n",
					r.Id, r.Filename, r.Language, r.Duration, r.Timestamp.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print one transcription as text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid transcription id %q", args[0])
			}
			result, err := core.TranscriptionService.GetTranscriptionByID(id)
			if err != nil {
				return describeError(err)
			}
			return writeResult(cmd.OutOrStdout(), result, "text")
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every stored transcription",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := core.TranscriptionService.ClearHistory(cmd.Context()); err != nil {
				return describeError(err)
			}
			color.Green("✔ History cleared")
			return nil
		},
	})

	return cmd
}

func audioFileFromPath(path, contentType string) (dto.AudioFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return dto.AudioFile{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if contentType == "" {
		contentType = contentTypes[strings.ToLower(filepath.Ext(path))]
	}
	return dto.AudioFile{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Size:        info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// printProgress echoes progress events until ctx is cancelled. The returned
// channel closes once the printer has stopped.
func printProgress(ctx context.Context, w io.Writer) <-chan struct{} {
	done := make(chan struct{})
	feed, err := core.Bus.Subscribe(ctx)
	if err != nil {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		for env := range feed {
			if env.Type != events.TypeTranscriptionProgress {
				continue
			}
			raw, err := json.Marshal(env.Data["progress"])
			if err != nil {
				continue
			}
			var p entity.TranscriptionProgress
			if err := json.Unmarshal(raw, &p); err != nil || p.Stage == "" {
				continue
			}
			fmt.Fprintf(w, "%s %3d%% %s\n", color.CyanString("[%s]", p.Stage), p.Progress, p.Message)
		}
	}()
	return done
}

func writeResult(w io.Writer, result *entity.TranscriptionResult, format string) error {
	switch format {
	case "json":
		out, err := core.TranscriptionService.ExportJSON(result)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, out)
		return err
	case "text":
		_, err := fmt.Fprint(w, core.TranscriptionService.ExportAsText(result))
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
