package review

import (
	"fmt"
	"time"

	"go-catalog/internal/catalog"
	"go-catalog/internal/user"
)

const (
	MinScore = 1
	MaxScore = 10
)

type Review struct {
	ID       uint          `gorm:"primaryKey" json:"id"`
	Text     string        `gorm:"not null" json:"text"`
	AuthorID uint          `gorm:"not null;uniqueIndex:idx_title_author" json:"-"`
	Author   user.User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	TitleID  uint          `gorm:"not null;uniqueIndex:idx_title_author" json:"-"`
	Title    catalog.Title `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Score    int           `gorm:"not null;default:1" json:"score"`
	PubDate  time.Time     `gorm:"autoCreateTime;index" json:"pub_date"`
}

// OwnerID satisfies the permission evaluator's ownership check.
func (r *Review) OwnerID() uint {
	return r.AuthorID
}

type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"not null" json:"text"`
	AuthorID uint      `gorm:"not null" json:"-"`
	Author   user.User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ReviewID uint      `gorm:"not null" json:"-"`
	Review   Review    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`
}

func (c *Comment) OwnerID() uint {
	return c.AuthorID
}

// ValidateScore enforces the 1..10 score bounds.
func ValidateScore(score int) error {
	if score < MinScore || score > MaxScore {
		return fmt.Errorf("score must be between %d and %d", MinScore, MaxScore)
	}
	return nil
}
