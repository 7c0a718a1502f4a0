// Package history persists completed translations so repeated requests
// for the same content can be served without spending provider quota.
package history

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"horse.fit/mtbridge/internal/provider"
)

// Record is one cached translation, keyed by content hash, provider and
// target language.
type Record struct {
	ID        int64     `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	ContentHash []byte `gorm:"size:32;not null;uniqueIndex:idx_translation_identity,priority:1"`
	Provider    string `gorm:"size:64;not null;uniqueIndex:idx_translation_identity,priority:2"`
	TargetLang  string `gorm:"size:16;not null;uniqueIndex:idx_translation_identity,priority:3"`

	SourceLang       string `gorm:"size:16"`
	DetectedLanguage string `gorm:"size:16"`
	TranslatedText   string `gorm:"not null"`
	CharCount        int
}

func (Record) TableName() string {
	return "translation_records"
}

// Store is a gorm-backed translation cache. A nil *Store is a valid
// disabled store: lookups miss and writes are dropped.
type Store struct {
	db *gorm.DB
}

// Open connects to postgres and migrates the record table.
func Open(databaseURL string) (*Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate translation records: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing gorm handle; used by tests.
func NewWithDB(db *gorm.DB) *Store {
	return &Store{db: db}
}

// RecordFromResponse shapes a completed translation into a cache record.
// The content hash is filled in by Save.
func RecordFromResponse(resp provider.Response) Record {
	record := Record{
		SourceLang:     resp.SourceLang,
		TargetLang:     resp.TargetLang,
		TranslatedText: resp.TranslatedText,
		CharCount:      resp.CharCount,
	}
	if resp.Metadata != nil {
		record.Provider = resp.Metadata.Provider
		record.DetectedLanguage = resp.Metadata.DetectedLanguage
	}
	return record
}

// HashContent derives the cache key for a source text.
func HashContent(text string) []byte {
	sum := sha256.Sum256([]byte(text))
	return sum[:]
}

// Lookup returns the cached record for text, or nil on a miss.
func (s *Store) Lookup(ctx context.Context, text, providerName, targetLang string) (*Record, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	var record Record
	err := s.db.WithContext(ctx).
		Where("content_hash = ? AND provider = ? AND target_lang = ?", HashContent(text), providerName, targetLang).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup translation record: %w", err)
	}
	return &record, nil
}

// Save upserts one completed translation.
func (s *Store) Save(ctx context.Context, text string, record Record) error {
	if s == nil || s.db == nil {
		return nil
	}

	record.ContentHash = HashContent(text)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "content_hash"}, {Name: "provider"}, {Name: "target_lang"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"source_lang", "detected_language", "translated_text", "char_count", "updated_at",
			}),
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("save translation record: %w", err)
	}
	return nil
}
