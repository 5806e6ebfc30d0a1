package contract

import (
	"context"

	"whisper-client/internal/entity"
)

type TranscriptionHistoryRepository interface {
	Load(ctx context.Context) ([]entity.TranscriptionResult, error)
	Save(ctx context.Context, history []entity.TranscriptionResult) error
}
