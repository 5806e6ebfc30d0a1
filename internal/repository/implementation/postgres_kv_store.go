package implementation

import (
	"context"
	"errors"

	"whisper-client/internal/model"
	"whisper-client/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresKeyValueStore struct {
	db *gorm.DB
}

func NewPostgresKeyValueStore(db *gorm.DB) (contract.KeyValueStore, error) {
	if err := db.AutoMigrate(&model.StateEntry{}); err != nil {
		return nil, err
	}
	return &PostgresKeyValueStore{db: db}, nil
}

func (s *PostgresKeyValueStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var m model.StateEntry
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(m.Value), true, nil
}

func (s *PostgresKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	m := model.StateEntry{Key: key, Value: value}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&m).Error
}

func (s *PostgresKeyValueStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Where("key IN ?", keys).Delete(&model.StateEntry{}).Error
}

func (s *PostgresKeyValueStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
