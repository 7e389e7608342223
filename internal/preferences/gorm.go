package preferences

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one persisted preference row
type Entry struct {
	Namespace string    `gorm:"primaryKey;size:64"`
	Key       string    `gorm:"primaryKey;size:128"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the Entry model
func (Entry) TableName() string {
	return "preferences"
}

// GormBackend stores preferences in a SQL table through gorm (sqlite or postgres)
type GormBackend struct {
	db *gorm.DB
}

var _ Backend = (*GormBackend)(nil)

// NewGormBackend creates a backend over an already migrated database
func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

func (b *GormBackend) Put(ctx context.Context, namespace, key, value string) error {
	entry := Entry{
		Namespace: namespace,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	err := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to save preference %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (b *GormBackend) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	var entries []Entry
	err := b.db.WithContext(ctx).
		Where("namespace = ? AND key = ?", namespace, key).
		Limit(1).
		Find(&entries).Error
	if err != nil {
		return "", false, fmt.Errorf("failed to get preference %s/%s: %w", namespace, key, err)
	}
	if len(entries) == 0 {
		return "", false, nil
	}
	return entries[0].Value, true, nil
}

func (b *GormBackend) Delete(ctx context.Context, namespace, key string) (bool, error) {
	result := b.db.WithContext(ctx).
		Where("namespace = ? AND key = ?", namespace, key).
		Delete(&Entry{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete preference %s/%s: %w", namespace, key, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (b *GormBackend) Clear(ctx context.Context, namespace string) ([]string, error) {
	var keys []string
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Entry{}).
			Where("namespace = ?", namespace).
			Order("key").
			Pluck("key", &keys).Error; err != nil {
			return err
		}
		return tx.Where("namespace = ?", namespace).Delete(&Entry{}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clear preferences %s: %w", namespace, err)
	}
	return keys, nil
}
