package contract

import (
	"context"

	"whisper-client/internal/entity"
)

type ChatMessageRepository interface {
	FindBySessionId(ctx context.Context, sessionId string) ([]entity.ChatMessage, error)
	SaveForSession(ctx context.Context, sessionId string, messages []entity.ChatMessage) error
	DeleteBySessionId(ctx context.Context, sessionId string) error
}
