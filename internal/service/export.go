package service

import (
	"fmt"
	"strconv"
	"strings"

	"whisper-client/internal/entity"
)

// ExportAsText renders a result as plain text. The output depends only on
// the result, so exporting twice yields identical text.
func ExportAsText(result *entity.TranscriptionResult) string {
	if result == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Transcription - %s\n", result.Filename)
	fmt.Fprintf(&b, "Language: %s\n", result.Language)
	fmt.Fprintf(&b, "Duration: %ss\n", strconv.FormatFloat(result.Duration, 'f', -1, 64))
	fmt.Fprintf(&b, "Date: %s\n\n", result.Timestamp.Format("2006-01-02 15:04:05"))

	if len(result.Segments) > 0 {
		b.WriteString("Segments:\n")
		for _, seg := range result.Segments {
			fmt.Fprintf(&b, "[%s - %s] %s: %s\n", formatClock(seg.Start), formatClock(seg.End), seg.Speaker, seg.Text)
			if seg.PolishedText != "" && seg.PolishedText != seg.Text {
				fmt.Fprintf(&b, "  Polished: %s\n", seg.PolishedText)
			}
			fmt.Fprintf(&b, "  Emotion: %s\n\n", seg.Emotion)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "Full Text:\n%s\n\n", result.Text)
	if result.PolishedText != "" {
		fmt.Fprintf(&b, "Polished Text:\n%s\n", result.PolishedText)
	}
	return b.String()
}

// formatClock renders whole seconds as MM:SS.
func formatClock(seconds float64) string {
	total := int(seconds)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
