package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxTransactRetries = 3

// Document is one stored JSON document, keyed by name.
type Document struct {
	ID        string    `gorm:"primaryKey"`
	Body      string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Document) TableName() string {
	return "documents"
}

// DocumentDAO stores the document as a single row and serializes writers with SELECT ... FOR UPDATE.
type DocumentDAO struct {
	db  *gorm.DB
	key string
}

func NewDocumentDAO(db *gorm.DB, key string) *DocumentDAO {
	return &DocumentDAO{
		db:  db,
		key: key,
	}
}

func (d *DocumentDAO) Ensure(ctx context.Context, seed []byte) error {
	result := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Document{ID: d.key, Body: string(seed), UpdatedAt: time.Now()})
	if result.Error != nil {
		return result.Error
	}

	return nil
}

func (d *DocumentDAO) Read(ctx context.Context) ([]byte, error) {
	var doc Document

	result := d.db.WithContext(ctx).Where("id = ?", d.key).Limit(1).Find(&doc)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	return []byte(doc.Body), nil
}

func (d *DocumentDAO) Write(ctx context.Context, body []byte) error {
	return upsert(d.db.WithContext(ctx), d.key, body)
}

// Transact locks the row, hands its body to fn and stores the result in the
// same transaction. Serialization failures and deadlocks are retried.
func (d *DocumentDAO) Transact(ctx context.Context, fn func(current []byte) ([]byte, error)) error {
	var err error
	for attempt := 0; attempt <= maxTransactRetries; attempt++ {
		err = d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var doc Document
			result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", d.key).
				Limit(1).
				Find(&doc)
			if result.Error != nil {
				return result.Error
			}

			next, err := fn([]byte(doc.Body))
			if err != nil {
				return err
			}

			return upsert(tx, d.key, next)
		})
		if err == nil || !isRetryable(err) {
			return err
		}
	}

	return fmt.Errorf("gave up after %d attempts -> %w", maxTransactRetries+1, err)
}

func upsert(db *gorm.DB, key string, body []byte) error {
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&Document{ID: key, Body: string(body), UpdatedAt: time.Now()})

	return result.Error
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.UniqueViolation:
		return true
	default:
		return false
	}
}
