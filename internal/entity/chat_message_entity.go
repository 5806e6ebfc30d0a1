package entity

import "time"

type MessageKind string

const (
	MessageKindAudio  MessageKind = "audio"
	MessageKindText   MessageKind = "text"
	MessageKindSystem MessageKind = "system"
)

type ChatMessage struct {
	Id            string               `json:"id"`
	SessionId     string               `json:"sessionId"`
	Type          MessageKind          `json:"type"`
	Content       string               `json:"content"`
	AudioURL      string               `json:"audioUrl,omitempty"`
	Transcription *TranscriptionResult `json:"transcription,omitempty"`
	Timestamp     time.Time            `json:"timestamp"`
	Sender        string               `json:"sender"`
}
