package entity

import "time"

type ChatSettings struct {
	EnableDiarization      bool `json:"enableDiarization"`
	EnableEmotionDetection bool `json:"enableEmotionDetection"`
	EnableTextPolishing    bool `json:"enableTextPolishing"`
	AutoSave               bool `json:"autoSave"`
}

type ChatSession struct {
	Id             string                `json:"id"`
	Name           string                `json:"name"`
	Description    string                `json:"description,omitempty"`
	Language       string                `json:"language"`
	Settings       ChatSettings          `json:"settings"`
	Transcriptions []TranscriptionResult `json:"transcriptions"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
	UserId         *int64                `json:"userId,omitempty"`
}

type SessionStats struct {
	TotalMessages       int            `json:"totalMessages"`
	AudioMessages       int            `json:"audioMessages"`
	TotalTranscriptions int            `json:"totalTranscriptions"`
	TotalDuration       int64          `json:"totalDuration"`
	UniqueSpeakers      int            `json:"uniqueSpeakers"`
	Emotions            map[string]int `json:"emotions"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

type RecordingState struct {
	IsRecording bool `json:"isRecording"`
	Duration    int  `json:"duration"`
}
