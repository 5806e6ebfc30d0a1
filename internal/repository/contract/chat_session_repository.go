package contract

import (
	"context"

	"whisper-client/internal/entity"
)

type ChatSessionRepository interface {
	FindAll(ctx context.Context) ([]entity.ChatSession, error)
	SaveAll(ctx context.Context, sessions []entity.ChatSession) error
}
