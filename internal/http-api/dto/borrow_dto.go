package dto

import (
	"time"

	"libraryhub/internal/http-api/models"
)

// BorrowBookDTO used for POST /api/books/:id/borrow
type BorrowBookDTO struct {
	Notes *string `json:"notes,omitempty"`
}

// BorrowedBookResponse DTO for borrow/return responses
type BorrowedBookResponse struct {
	ID         string              `json:"id"`
	Book       BookResponse        `json:"book"`
	BorrowedAt time.Time           `json:"borrowed_at"`
	DueDate    time.Time           `json:"due_date"`
	ReturnedAt *time.Time          `json:"returned_at,omitempty"`
	Status     models.BorrowStatus `json:"status"`
	Notes      *string             `json:"notes,omitempty"`
	IsOverdue  bool                `json:"is_overdue"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// BorrowedBooksListResponse wraps a user's open loans.
type BorrowedBooksListResponse struct {
	Items []BorrowedBookResponse `json:"items"`
	Total int                    `json:"total"`
}

func FromBorrowModel(record models.BorrowedBook, book models.Book) BorrowedBookResponse {
	return BorrowedBookResponse{
		ID:         record.ID,
		Book:       FromBookModel(book),
		BorrowedAt: record.BorrowedAt,
		DueDate:    record.DueDate,
		ReturnedAt: record.ReturnedAt,
		Status:     record.Status,
		Notes:      record.Notes,
		IsOverdue:  record.IsOverdue(),
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
}
