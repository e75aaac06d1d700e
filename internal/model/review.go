package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is a rating with optional text. CollegeID is matched by value only;
// there is no foreign key, so a review may outlive its college.
type Review struct {
	Seq       int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	ID        string    `gorm:"size:36;uniqueIndex;not null" json:"id"`
	CollegeID string    `gorm:"size:36;index;not null" json:"collegeId"`
	Review    string    `gorm:"type:text" json:"review"`
	Rating    int       `gorm:"not null" json:"rating"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

// BeforeCreate assigns the identifier.
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// MinRating and MaxRating bound Review.Rating.
const (
	MinRating = 1
	MaxRating = 5
)
