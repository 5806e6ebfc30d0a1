package implementation

import (
	"context"

	"whisper-client/internal/constant"
	"whisper-client/internal/entity"
	"whisper-client/internal/repository/contract"
)

type ChatMessageRepositoryImpl struct {
	kv contract.KeyValueStore
}

func NewChatMessageRepository(kv contract.KeyValueStore) contract.ChatMessageRepository {
	return &ChatMessageRepositoryImpl{kv: kv}
}

func (r *ChatMessageRepositoryImpl) FindBySessionId(ctx context.Context, sessionId string) ([]entity.ChatMessage, error) {
	var messages []entity.ChatMessage
	if _, err := getJSON(ctx, r.kv, constant.MessagesKey(sessionId), &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *ChatMessageRepositoryImpl) SaveForSession(ctx context.Context, sessionId string, messages []entity.ChatMessage) error {
	if messages == nil {
		messages = []entity.ChatMessage{}
	}
	return setJSON(ctx, r.kv, constant.MessagesKey(sessionId), messages)
}

func (r *ChatMessageRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId string) error {
	return r.kv.Delete(ctx, constant.MessagesKey(sessionId))
}
