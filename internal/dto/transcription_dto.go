package dto

import (
	"io"

	"whisper-client/internal/entity"
)

// AudioFile describes an upload. Open may be called more than once: the
// file is probed before it is streamed to the backend.
type AudioFile struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

type TranscriptionRequest struct {
	File              AudioFile `json:"-" validate:"-"`
	Language          string    `json:"language,omitempty" validate:"omitempty,oneof=kk ru en" label:"Language"`
	Task              string    `json:"task" validate:"required,oneof=transcribe translate" label:"Task"`
	EnableDiarization bool      `json:"enable_diarization"`
	SessionId         string    `json:"session_id,omitempty"`
	// InRemoteSession uploads into the backend session SessionId instead of
	// the standalone transcription endpoint.
	InRemoteSession bool `json:"-"`
}

type TranscriptionStateResponse struct {
	IsProcessing  bool                          `json:"is_processing"`
	Current       *entity.TranscriptionResult   `json:"current"`
	Progress      *entity.TranscriptionProgress `json:"progress"`
	AudioAnalysis entity.AudioAnalysis          `json:"audio_analysis"`
	Error         string                        `json:"error,omitempty"`
}
