package dto

import "whisper-client/internal/entity"

type CreateChatSessionRequest struct {
	Name        string              `json:"name" validate:"required,max=100" label:"Session name"`
	Description string              `json:"description,omitempty" validate:"max=500" label:"Description"`
	Language    string              `json:"language" validate:"required,oneof=kk ru en" label:"Language"`
	Settings    entity.ChatSettings `json:"settings"`
}

// UpdateChatSessionRequest is a partial update; nil fields are left untouched.
type UpdateChatSessionRequest struct {
	Name        *string              `json:"name,omitempty" validate:"omitempty,min=1,max=100" label:"Session name"`
	Description *string              `json:"description,omitempty" validate:"omitempty,max=500" label:"Description"`
	Language    *string              `json:"language,omitempty" validate:"omitempty,oneof=kk ru en" label:"Language"`
	Settings    *entity.ChatSettings `json:"settings,omitempty"`
}

type AddMessageRequest struct {
	Type     entity.MessageKind `json:"type" validate:"required,oneof=audio text system" label:"Message type"`
	Content  string             `json:"content" validate:"required" label:"Message content"`
	AudioURL string             `json:"audioUrl,omitempty" validate:"omitempty,url" label:"Audio URL"`
	Sender   string             `json:"sender,omitempty" validate:"omitempty,oneof=user system" label:"Sender"`
}

type ImportSessionRequest struct {
	Data string `json:"data" validate:"required" label:"Session data"`
}

// SessionExport is the document produced by export and accepted by import.
type SessionExport struct {
	Session    *entity.ChatSession  `json:"session"`
	Messages   []entity.ChatMessage `json:"messages"`
	ExportedAt string               `json:"exportedAt"`
}

type ChatStateResponse struct {
	Sessions       []entity.ChatSession  `json:"sessions"`
	CurrentSession *entity.ChatSession   `json:"current_session"`
	Messages       []entity.ChatMessage  `json:"messages"`
	ChannelState   string                `json:"channel_state"`
	Recording      entity.RecordingState `json:"recording"`
	Error          string                `json:"error,omitempty"`
}
