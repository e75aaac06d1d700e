package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"campus-reveal-backend/internal/parse"
)

// College is one catalog entry. Seq records insertion order and is never
// exposed; ID is the public identifier.
type College struct {
	Seq      int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	ID       string `gorm:"size:36;uniqueIndex;not null" json:"id"`
	Name     string `gorm:"size:256;not null;uniqueIndex:idx_college_identity,priority:1" json:"name"`
	City     string `gorm:"size:128;not null;uniqueIndex:idx_college_identity,priority:2" json:"city"`
	State    string `gorm:"size:128;not null;uniqueIndex:idx_college_identity,priority:3" json:"state"`
	NIRFRank string `gorm:"column:nirf_rank;size:32;not null;default:'nan'" json:"nirfRank"`
	Rank     string `gorm:"size:32;not null;default:'nan'" json:"rank"`
}

// BeforeCreate assigns the identifier and fills absent ranks with the sentinel.
func (c *College) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.NIRFRank = parse.NormalizeRank(c.NIRFRank)
	c.Rank = parse.NormalizeRank(c.Rank)
	return nil
}
