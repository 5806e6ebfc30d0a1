package implementation

import (
	"context"

	"whisper-client/internal/constant"
	"whisper-client/internal/entity"
	"whisper-client/internal/repository/contract"
)

type TranscriptionHistoryRepositoryImpl struct {
	kv contract.KeyValueStore
}

func NewTranscriptionHistoryRepository(kv contract.KeyValueStore) contract.TranscriptionHistoryRepository {
	return &TranscriptionHistoryRepositoryImpl{kv: kv}
}

func (r *TranscriptionHistoryRepositoryImpl) Load(ctx context.Context) ([]entity.TranscriptionResult, error) {
	var history []entity.TranscriptionResult
	if _, err := getJSON(ctx, r.kv, constant.StorageKeyTranscriptionHistory, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (r *TranscriptionHistoryRepositoryImpl) Save(ctx context.Context, history []entity.TranscriptionResult) error {
	if history == nil {
		history = []entity.TranscriptionResult{}
	}
	return setJSON(ctx, r.kv, constant.StorageKeyTranscriptionHistory, history)
}
