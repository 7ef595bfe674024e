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

// document is one row of the documents table
type document struct {
	Name      string `gorm:"primaryKey"`
	Body      string `gorm:"not null"`
	UpdatedAt time.Time
}

func (document) TableName() string {
	return "documents"
}

// SQLiteBackend stores documents as rows in a SQLite database
type SQLiteBackend struct {
	db *gorm.DB
}

// NewSQLiteBackend opens (or creates) the database at path and migrates it
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.AutoMigrate(&document{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Read(ctx context.Context, name string) ([]byte, error) {
	var doc document
	err := b.db.WithContext(ctx).First(&doc, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc.Body), nil
}

// Write upserts every document in one transaction
func (b *SQLiteBackend) Write(ctx context.Context, docs map[string][]byte) error {
	now := time.Now()
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range sortedNames(docs) {
			row := document{Name: name, Body: string(docs[name]), UpdatedAt: now}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("upsert %s: %w", name, err)
			}
		}
		return nil
	})
}

func (b *SQLiteBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
