package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqliteLink is the JSON form of a link inside the links column.
type sqliteLink struct {
	ID          uint64  `json:"id"`
	URI         string  `json:"uri"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImageURI    *string `json:"image_uri,omitempty"`
}

// profileRecord maps to the profiles table.
type profileRecord struct {
	Owner       string       `gorm:"primaryKey"`
	Title       string       `gorm:"not null"`
	Description string       `gorm:"not null"`
	ImageURI    *string      `gorm:"column:image_uri"`
	Links       []sqliteLink `gorm:"serializer:json"`
	Published   bool         `gorm:"column:is_published;not null"`
	NextLinkID  uint64       `gorm:"not null"`
	CreatedAt   time.Time    `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime:false"`
}

func (profileRecord) TableName() string {
	return "profiles"
}

func toProfileRecord(p *Profile) profileRecord {
	links := make([]sqliteLink, 0, len(p.Links))
	for _, l := range p.Links {
		links = append(links, sqliteLink(l))
	}
	return profileRecord{
		Owner:       p.Owner,
		Title:       p.Title,
		Description: p.Description,
		ImageURI:    p.ImageURI,
		Links:       links,
		Published:   p.Published,
		NextLinkID:  p.NextLinkID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r profileRecord) toProfile() *Profile {
	links := make([]Link, 0, len(r.Links))
	for _, l := range r.Links {
		links = append(links, Link(l))
	}
	return &Profile{
		Owner:       r.Owner,
		Title:       r.Title,
		Description: r.Description,
		ImageURI:    r.ImageURI,
		Links:       links,
		Published:   r.Published,
		NextLinkID:  r.NextLinkID,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

// OpenSQLite opens (or creates) the database file at path. Connections are
// limited to one so SQLite write transactions never contend.
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// SQLiteStore implements Store on a gorm SQLite database.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore migrates the schema and returns the store.
func NewSQLiteStore(db *gorm.DB) (*SQLiteStore, error) {
	if err := db.AutoMigrate(&profileRecord{}); err != nil {
		return nil, fmt.Errorf("migrate profiles: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Get retrieves a profile by owner.
func (s *SQLiteStore) Get(ctx context.Context, owner string) (*Profile, error) {
	var rec profileRecord
	err := s.db.WithContext(ctx).Where("owner = ?", owner).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec.toProfile(), nil
}

// Create inserts a profile, failing when the owner already has one.
func (s *SQLiteStore) Create(ctx context.Context, p *Profile) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&profileRecord{}).Where("owner = ?", p.Owner).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyExists
		}
		rec := toProfileRecord(p)
		return tx.Create(&rec).Error
	})
}

// Update loads, mutates and rewrites a profile inside one transaction.
func (s *SQLiteStore) Update(ctx context.Context, owner string, fn func(p *Profile) error) (*Profile, error) {
	var result *Profile

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec profileRecord
		if err := tx.Where("owner = ?", owner).Take(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		p := rec.toProfile()
		if err := fn(p); err != nil {
			return err
		}
		updated := toProfileRecord(p)
		if err := tx.Save(&updated).Error; err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Compile-time interface check
var _ Store = (*SQLiteStore)(nil)
