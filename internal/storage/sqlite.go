package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type kvEntry struct {
	Namespace string `gorm:"primaryKey"`
	Name      string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

func (kvEntry) TableName() string {
	return "kv_entries"
}

// SQLiteStore keeps values in <dir>/urbanflow.db, one row per namespace and
// key.
type SQLiteStore struct {
	db        *gorm.DB
	namespace string
}

func NewSQLiteStore(dir string, namespace string) (*SQLiteStore, error) {

	if len(dir) == 0 {
		return nil, fmt.Errorf("sqlite store requires a directory")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return OpenSQLiteStore(filepath.Join(dir, "urbanflow.db"), namespace)
}

// OpenSQLiteStore opens the database at dsn directly, which may be an
// in-memory DSN.
func OpenSQLiteStore(dsn string, namespace string) (*SQLiteStore, error) {

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}

	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("failed to migrate sqlite store: %w", err)
	}

	return &SQLiteStore{
		db:        db,
		namespace: namespace,
	}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry kvEntry

	err := s.db.WithContext(ctx).
		Where("namespace = ? AND name = ?", s.namespace, key).
		Take(&entry).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	return entry.Value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value string) error {
	entry := kvEntry{
		Namespace: s.namespace,
		Name:      key,
		Value:     value,
		UpdatedAt: now(),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error

	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND name = ?", s.namespace, key).
		Delete(&kvEntry{}).Error

	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
