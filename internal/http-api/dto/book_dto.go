package dto

import (
	"time"

	"libraryhub/internal/http-api/models"
)

// CreateBookDTO used for POST /api/books
type CreateBookDTO struct {
	Title         string  `json:"title" binding:"required,max=500"`
	Author        string  `json:"author" binding:"required,max=255"`
	ISBN          *string `json:"isbn,omitempty" binding:"omitempty,max=20"`
	Description   *string `json:"description,omitempty"`
	Genre         *string `json:"genre,omitempty" binding:"omitempty,max=100"`
	PublishedYear *int    `json:"published_year,omitempty" binding:"omitempty,min=1000"`
	Publisher     *string `json:"publisher,omitempty" binding:"omitempty,max=255"`
	TotalCopies   *int    `json:"total_copies,omitempty" binding:"omitempty,min=1"`
	CoverImageURL *string `json:"cover_image_url,omitempty" binding:"omitempty,url,max=500"`
}

// UpdateBookDTO used for PUT /api/books/:id (partial updates allowed)
type UpdateBookDTO struct {
	Title         *string `json:"title,omitempty" binding:"omitempty,max=500"`
	Author        *string `json:"author,omitempty" binding:"omitempty,max=255"`
	ISBN          *string `json:"isbn,omitempty" binding:"omitempty,max=20"`
	Description   *string `json:"description,omitempty"`
	Genre         *string `json:"genre,omitempty" binding:"omitempty,max=100"`
	PublishedYear *int    `json:"published_year,omitempty" binding:"omitempty,min=1000"`
	Publisher     *string `json:"publisher,omitempty" binding:"omitempty,max=255"`
	TotalCopies   *int    `json:"total_copies,omitempty" binding:"omitempty,min=1"`
	CoverImageURL *string `json:"cover_image_url,omitempty" binding:"omitempty,url,max=500"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

// BookQueryDTO used for GET /api/books query parameters
type BookQueryDTO struct {
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	Search    string `form:"search"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=ASC DESC asc desc"`
}

// ExternalSearchDTO used for GET /api/books/search
type ExternalSearchDTO struct {
	Query string `form:"q" binding:"required,min=2,max=100"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

// BookResponse DTO for responses
type BookResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            *string   `json:"isbn,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Genre           *string   `json:"genre,omitempty"`
	PublishedYear   *int      `json:"published_year,omitempty"`
	Publisher       *string   `json:"publisher,omitempty"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	CoverImageURL   *string   `json:"cover_image_url,omitempty"`
	IsActive        bool      `json:"is_active"`
	IsAvailable     bool      `json:"is_available"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PaginatedBooksResponse wraps one catalog page.
type PaginatedBooksResponse struct {
	Data       []BookResponse `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int64          `json:"total_pages"`
}

// Converters
func (d CreateBookDTO) ToModel() models.Book {
	total := 1
	if d.TotalCopies != nil {
		total = *d.TotalCopies
	}
	return models.Book{
		Title:           d.Title,
		Author:          d.Author,
		ISBN:            d.ISBN,
		Description:     d.Description,
		Genre:           d.Genre,
		PublishedYear:   d.PublishedYear,
		Publisher:       d.Publisher,
		TotalCopies:     total,
		AvailableCopies: total,
		CoverImageURL:   d.CoverImageURL,
		IsActive:        true,
	}
}

func FromBookModel(b models.Book) BookResponse {
	return BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Description:     b.Description,
		Genre:           b.Genre,
		PublishedYear:   b.PublishedYear,
		Publisher:       b.Publisher,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		CoverImageURL:   b.CoverImageURL,
		IsActive:        b.IsActive,
		IsAvailable:     b.IsAvailable(),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
