package implementation

import (
	"context"

	"whisper-client/internal/constant"
	"whisper-client/internal/entity"
	"whisper-client/internal/repository/contract"
)

type ChatSessionRepositoryImpl struct {
	kv contract.KeyValueStore
}

func NewChatSessionRepository(kv contract.KeyValueStore) contract.ChatSessionRepository {
	return &ChatSessionRepositoryImpl{kv: kv}
}

func (r *ChatSessionRepositoryImpl) FindAll(ctx context.Context) ([]entity.ChatSession, error) {
	var sessions []entity.ChatSession
	if _, err := getJSON(ctx, r.kv, constant.StorageKeyChatSessions, &sessions); err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].Transcriptions == nil {
			sessions[i].Transcriptions = []entity.TranscriptionResult{}
		}
	}
	return sessions, nil
}

// SaveAll rewrites the whole list; the store keeps one value per container.
func (r *ChatSessionRepositoryImpl) SaveAll(ctx context.Context, sessions []entity.ChatSession) error {
	if sessions == nil {
		sessions = []entity.ChatSession{}
	}
	return setJSON(ctx, r.kv, constant.StorageKeyChatSessions, sessions)
}
