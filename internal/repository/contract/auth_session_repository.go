package contract

import (
	"context"

	"whisper-client/internal/entity"
)

type AuthSessionRepository interface {
	// Load returns nil when no complete session is stored.
	Load(ctx context.Context) (*entity.AuthSession, error)
	Save(ctx context.Context, session *entity.AuthSession) error
	Clear(ctx context.Context) error
}
