package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BorrowStatus string

const (
	BorrowStatusBorrowed BorrowStatus = "borrowed"
	BorrowStatusReturned BorrowStatus = "returned"
	// BorrowStatusOverdue exists on the wire but is never persisted;
	// overdue is computed from the due date on read.
	BorrowStatusOverdue BorrowStatus = "overdue"
)

type BorrowedBook struct {
	ID         string       `json:"id" gorm:"primaryKey;type:uuid"`
	UserID     string       `json:"user_id" gorm:"type:uuid;not null;index:idx_borrowed_book_user"`
	BookID     string       `json:"book_id" gorm:"type:uuid;not null;index:idx_borrowed_book_book"`
	Status     BorrowStatus `json:"status" gorm:"size:20;not null;default:'borrowed';index:idx_borrowed_book_status"`
	BorrowedAt time.Time    `json:"borrowed_at" gorm:"not null"`
	DueDate    time.Time    `json:"due_date" gorm:"not null"`
	ReturnedAt *time.Time   `json:"returned_at,omitempty"`
	Notes      *string      `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`

	// associations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Book *Book `json:"book,omitempty" gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate hook to set UUID before creating a BorrowedBook
func (bb *BorrowedBook) BeforeCreate(tx *gorm.DB) (err error) {
	if bb.ID == "" {
		bb.ID = uuid.New().String()
	}
	return
}

// IsOverdue reports whether an open loan has passed its due date.
func (bb *BorrowedBook) IsOverdue() bool {
	return bb.Status == BorrowStatusBorrowed && time.Now().After(bb.DueDate)
}

func (BorrowedBook) TableName() string {
	return "borrowed_books"
}
