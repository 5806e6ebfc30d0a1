package implementation

import (
	"context"
	"time"

	"whisper-client/internal/constant"
	"whisper-client/internal/entity"
	"whisper-client/internal/repository/contract"
)

type AuthSessionRepositoryImpl struct {
	kv contract.KeyValueStore
}

func NewAuthSessionRepository(kv contract.KeyValueStore) contract.AuthSessionRepository {
	return &AuthSessionRepositoryImpl{kv: kv}
}

// Load needs all three keys; a partially written session counts as absent.
func (r *AuthSessionRepositoryImpl) Load(ctx context.Context) (*entity.AuthSession, error) {
	var user entity.User
	ok, err := getJSON(ctx, r.kv, constant.StorageKeyUser, &user)
	if err != nil || !ok {
		return nil, err
	}

	var token string
	ok, err = getJSON(ctx, r.kv, constant.StorageKeySessionToken, &token)
	if err != nil || !ok {
		return nil, err
	}

	var expiry time.Time
	ok, err = getJSON(ctx, r.kv, constant.StorageKeySessionExpiry, &expiry)
	if err != nil || !ok {
		return nil, err
	}

	return &entity.AuthSession{User: &user, Token: token, ExpiresAt: expiry}, nil
}

func (r *AuthSessionRepositoryImpl) Save(ctx context.Context, session *entity.AuthSession) error {
	if err := setJSON(ctx, r.kv, constant.StorageKeyUser, session.User); err != nil {
		return err
	}
	if err := setJSON(ctx, r.kv, constant.StorageKeySessionToken, session.Token); err != nil {
		return err
	}
	return setJSON(ctx, r.kv, constant.StorageKeySessionExpiry, session.ExpiresAt.UTC())
}

func (r *AuthSessionRepositoryImpl) Clear(ctx context.Context) error {
	return r.kv.Delete(ctx,
		constant.StorageKeyUser,
		constant.StorageKeySessionToken,
		constant.StorageKeySessionExpiry,
	)
}
