package mapper

import (
	"time"

	"whisper-client/internal/entity"
	"whisper-client/pkg/backend"
)

type TranscriptionMapper struct{}

func NewTranscriptionMapper() *TranscriptionMapper {
	return &TranscriptionMapper{}
}

// ToEntity stamps the backend response with the local completion time and
// the chat session it belongs to.
func (m *TranscriptionMapper) ToEntity(r *backend.TranscribeResponse, at time.Time, sessionId string) *entity.TranscriptionResult {
	if r == nil {
		return nil
	}
	segments := make([]entity.Segment, len(r.Segments))
	for i, s := range r.Segments {
		segments[i] = entity.Segment{
			Start:        s.Start,
			End:          s.End,
			Speaker:      s.Speaker,
			Text:         s.Text,
			Emotion:      s.Emotion,
			PolishedText: s.PolishedText,
		}
	}
	speakers := r.Speakers
	if speakers == nil {
		speakers = []string{}
	}
	return &entity.TranscriptionResult{
		Id:             r.Id,
		Text:           r.Text,
		AudioURL:       r.AudioURL,
		Language:       r.Language,
		Duration:       r.Duration,
		Filename:       r.Filename,
		Segments:       segments,
		FormattedText:  r.FormattedText,
		Speakers:       speakers,
		OverallEmotion: r.OverallEmotion,
		PolishedText:   r.PolishedText,
		Timestamp:      at,
		SessionId:      sessionId,
	}
}
