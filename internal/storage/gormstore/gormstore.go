// Package gormstore keeps ledger collections in a single SQL table through
// gorm, so the depot can run on sqlite, postgres or mysql.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallbiznis/rythudepot/internal/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Collection is one persisted collection payload.
type Collection struct {
	CollectionKey string    `gorm:"primaryKey;type:varchar(64)"`
	Payload       []byte    `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName sets the database table name.
func (Collection) TableName() string { return "depot_collections" }

type Backend struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Backend {
	return &Backend{db: db}
}

// AutoMigrate creates the collections table on dialects without embedded
// migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Collection{})
}

func (b *Backend) Load(ctx context.Context, key string) ([]byte, error) {
	var row Collection
	err := b.db.WithContext(ctx).
		Where("collection_key = ?", key).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return row.Payload, nil
}

func (b *Backend) Save(ctx context.Context, records []storage.Record) error {
	if len(records) == 0 {
		return nil
	}
	now := time.Now().UTC()
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range records {
			if rec.Key == "" {
				return errors.New("empty collection key")
			}
			row := Collection{
				CollectionKey: rec.Key,
				Payload:       rec.Payload,
				UpdatedAt:     now,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "collection_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("save %s: %w", rec.Key, err)
			}
		}
		return nil
	})
}

func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
