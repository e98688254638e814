package catalog

import (
	"fmt"
	"time"
)

// Category and Genre share the same shape: a unique display name plus a
// unique URL slug used as the lookup key.

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	Name string `gorm:"uniqueIndex;size:256;not null" json:"name"`
	Slug string `gorm:"uniqueIndex;size:50;not null" json:"slug"`
}

type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	Name string `gorm:"uniqueIndex;size:256;not null" json:"name"`
	Slug string `gorm:"uniqueIndex;size:50;not null" json:"slug"`
}

type Title struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"index;not null" json:"name"`
	Year        *int   `gorm:"index" json:"year"`
	Description string `json:"description"`
	CategoryID  *uint  `json:"-"`
	// Category is cleared, not cascaded, when its category is deleted.
	Category  *Category `gorm:"constraint:OnDelete:SET NULL" json:"category"`
	Genres    []Genre   `gorm:"many2many:title_genres" json:"genre"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// ValidateYear rejects years in the future.
func ValidateYear(value int, now time.Time) error {
	if value > now.Year() {
		return fmt.Errorf("year %d must not exceed the current year", value)
	}
	return nil
}
