package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus-reveal-backend/internal/model"
	"campus-reveal-backend/internal/parse"
)

// Store defines the interface for all database operations.
type Store interface {
	ListColleges(ctx context.Context, nameQuery string) ([]model.College, error)
	GetCollege(ctx context.Context, id string) (*model.College, error)
	InsertColleges(ctx context.Context, colleges []model.College) (InsertResult, error)
	ListReviews(ctx context.Context, collegeID string) ([]model.Review, error)
	AddReview(ctx context.Context, review *model.Review) error
	Ping(ctx context.Context) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// ListColleges returns every college in insertion order. A non-empty
// nameQuery keeps only colleges whose name contains it, ignoring case.
func (s *gormStore) ListColleges(ctx context.Context, nameQuery string) ([]model.College, error) {
	colleges := make([]model.College, 0)
	tx := s.db.WithContext(ctx).Order("seq")
	// SQLite's LOWER only folds ASCII, so matching happens in Go there.
	foldInSQL := nameQuery != "" && s.db.Dialector.Name() != "sqlite"
	if foldInSQL {
		tx = tx.Where("LOWER(name) LIKE ? ESCAPE '"+parse.LikeEscape+"'", parse.LikePattern(nameQuery))
	}
	if err := tx.Find(&colleges).Error; err != nil {
		return nil, fmt.Errorf("failed to list colleges: %w", err)
	}
	if nameQuery == "" || foldInSQL {
		return colleges, nil
	}

	matched := make([]model.College, 0, len(colleges))
	for _, c := range colleges {
		if parse.NameMatches(c.Name, nameQuery) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

// GetCollege looks a college up by its public identifier. Identifiers that
// are not UUIDs cannot exist and yield ErrNotFound without a query.
func (s *gormStore) GetCollege(ctx context.Context, id string) (*model.College, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var college model.College
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&college).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get college %s: %w", id, err)
	}
	return &college, nil
}

// insertBatchSize keeps each INSERT well under the bound-parameter limits
// of SQLite (32766) and PostgreSQL (65535).
const insertBatchSize = 500

// InsertColleges creates colleges in batches of insertBatchSize. Rows that
// collide with an existing (name, city, state) are skipped.
func (s *gormStore) InsertColleges(ctx context.Context, colleges []model.College) (InsertResult, error) {
	if len(colleges) == 0 {
		return InsertResult{}, nil
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&colleges, insertBatchSize)
	if res.Error != nil {
		return InsertResult{}, fmt.Errorf("batch insert colleges failed: %w", res.Error)
	}
	return InsertResult{
		Inserted: res.RowsAffected,
		Skipped:  int64(len(colleges)) - res.RowsAffected,
	}, nil
}

// ListReviews returns the reviews whose college identifier equals
// collegeID, oldest first.
func (s *gormStore) ListReviews(ctx context.Context, collegeID string) ([]model.Review, error) {
	reviews := make([]model.Review, 0)
	if err := s.db.WithContext(ctx).
		Where("college_id = ?", collegeID).
		Order("seq").
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews for college %s: %w", collegeID, err)
	}
	return reviews, nil
}

// AddReview persists review, filling in its identifier and creation time.
func (s *gormStore) AddReview(ctx context.Context, review *model.Review) error {
	if err := s.db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("failed to add review for college %s: %w", review.CollegeID, err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
