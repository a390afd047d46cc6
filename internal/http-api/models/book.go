package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Book struct {
	ID              string    `json:"id" gorm:"primaryKey;type:uuid"`
	Title           string    `json:"title" gorm:"size:500;not null;index:idx_book_title"`
	Author          string    `json:"author" gorm:"size:255;not null;index:idx_book_author"`
	ISBN            *string   `json:"isbn,omitempty" gorm:"size:20;uniqueIndex:idx_book_isbn"`
	Description     *string   `json:"description,omitempty" gorm:"type:text"`
	Genre           *string   `json:"genre,omitempty" gorm:"size:100"`
	PublishedYear   *int      `json:"published_year,omitempty"`
	Publisher       *string   `json:"publisher,omitempty" gorm:"size:255"`
	TotalCopies     int       `json:"total_copies" gorm:"not null;default:1"`
	AvailableCopies int       `json:"available_copies" gorm:"not null;default:1"`
	CoverImageURL   *string   `json:"cover_image_url,omitempty" gorm:"size:500"`
	IsActive        bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// association
	BorrowedBooks []BorrowedBook `json:"-" gorm:"foreignKey:BookID"`
}

// BeforeCreate hook to set UUID before creating a Book
func (b *Book) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

// IsAvailable reports whether the book can be borrowed right now.
func (b *Book) IsAvailable() bool {
	return b.AvailableCopies > 0 && b.IsActive
}

func (Book) TableName() string {
	return "books"
}
