package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/search"

	"gorm.io/gorm"
)

const (
	defaultBorrowDurationDays = 14
	defaultPageSize           = 10
	maxPageSize               = 100
	minSearchLength           = 2
	defaultExternalLimit      = 10
	maxExternalLimit          = 50
)

var (
	ErrBookNotFound       = errors.New("book not found")
	ErrBookNotAvailable   = errors.New("book is not available for borrowing")
	ErrAlreadyBorrowed    = errors.New("you have already borrowed this book")
	ErrISBNExists         = errors.New("book with this ISBN already exists")
	ErrInsufficientCopies = errors.New("not enough copies available")
	ErrBorrowNotFound     = errors.New("borrow record not found")
	ErrAlreadyReturned    = errors.New("this book has already been returned")
)

// ExternalSearcher is the remote catalog the search endpoint forwards to.
type ExternalSearcher interface {
	Search(ctx context.Context, query string, limit int) (*search.Result, error)
}

// PaginatedBooks is one catalog page plus its pagination metadata.
type PaginatedBooks struct {
	Books      []models.Book
	Total      int64
	Page       int
	Limit      int
	TotalPages int64
}

type BookService interface {
	Create(ctx context.Context, in dto.CreateBookDTO) (*models.Book, error)
	List(ctx context.Context, q dto.BookQueryDTO) (*PaginatedBooks, error)
	GetByID(ctx context.Context, id string) (*models.Book, error)
	Update(ctx context.Context, id string, in dto.UpdateBookDTO) (*models.Book, error)
	Delete(ctx context.Context, id string) error

	Borrow(ctx context.Context, bookID, userID string, notes *string) (*models.BorrowedBook, error)
	Return(ctx context.Context, borrowID, userID string) (*models.BorrowedBook, error)
	GetBorrowedBooks(ctx context.Context, userID string) ([]models.BorrowedBook, error)

	SearchExternal(ctx context.Context, query string, limit int) (*search.Result, error)
}

type bookService struct {
	books    repository.BookRepository
	borrows  repository.BorrowRepository
	searcher ExternalSearcher
	logger   *slog.Logger
}

func NewBookService(
	books repository.BookRepository,
	borrows repository.BorrowRepository,
	searcher ExternalSearcher,
	logger *slog.Logger,
) BookService {
	return &bookService{
		books:    books,
		borrows:  borrows,
		searcher: searcher,
		logger:   logger,
	}
}

func (s *bookService) Create(ctx context.Context, in dto.CreateBookDTO) (*models.Book, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, errors.New("title is required")
	}
	if strings.TrimSpace(in.Author) == "" {
		return nil, errors.New("author is required")
	}

	// ISBN must be unique across all books, soft-deleted ones included
	if in.ISBN != nil && *in.ISBN != "" {
		if _, err := s.books.FindByISBN(ctx, *in.ISBN, ""); err == nil {
			return nil, ErrISBNExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	book := in.ToModel()
	if err := s.books.Create(ctx, &book); err != nil {
		if errors.Is(err, repository.ErrDuplicateISBN) {
			return nil, ErrISBNExists
		}
		return nil, err
	}

	s.logger.Info("New book created", "title", book.Title, "author", book.Author)
	return &book, nil
}

func (s *bookService) List(ctx context.Context, q dto.BookQueryDTO) (*PaginatedBooks, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		// clamp, never reject
		limit = maxPageSize
	}

	term := strings.TrimSpace(q.Search)
	if len(term) < minSearchLength {
		term = ""
	}

	params := repository.ListBooksParams{
		Search:    term,
		SortBy:    sortColumn(q.SortBy),
		SortOrder: sortDirection(q.SortOrder),
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}

	books, total, err := s.books.List(ctx, params)
	if err != nil {
		return nil, err
	}

	// Title match takes precedence; the author query is only consulted
	// when the title search comes back empty, never unioned with it.
	if len(books) == 0 && term != "" {
		books, total, err = s.books.ListByAuthor(ctx, params)
		if err != nil {
			return nil, err
		}
	}

	var totalPages int64
	if total > 0 {
		totalPages = (total + int64(limit) - 1) / int64(limit)
	}

	return &PaginatedBooks{
		Books:      books,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

func (s *bookService) GetByID(ctx context.Context, id string) (*models.Book, error) {
	book, err := s.books.FindByID(ctx, id, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

func (s *bookService) Update(ctx context.Context, id string, in dto.UpdateBookDTO) (*models.Book, error) {
	// updates may touch soft-deleted books too
	book, err := s.books.FindByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	// Check ISBN uniqueness if updating
	if in.ISBN != nil && *in.ISBN != "" && (book.ISBN == nil || *in.ISBN != *book.ISBN) {
		if _, err := s.books.FindByISBN(ctx, *in.ISBN, book.ID); err == nil {
			return nil, ErrISBNExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	// Recompute available copies if the total changed; shrinking below the
	// number of copies currently out on loan is rejected.
	if in.TotalCopies != nil && *in.TotalCopies != book.TotalCopies {
		borrowedCount := book.TotalCopies - book.AvailableCopies
		newAvailable := *in.TotalCopies - borrowedCount
		if newAvailable < 0 {
			return nil, ErrInsufficientCopies
		}
		book.TotalCopies = *in.TotalCopies
		book.AvailableCopies = newAvailable
	}

	applyBookPatch(book, in)

	if err := s.books.Save(ctx, book); err != nil {
		if errors.Is(err, repository.ErrDuplicateISBN) {
			return nil, ErrISBNExists
		}
		return nil, err
	}

	s.logger.Info("Book updated", "title", book.Title, "book_id", book.ID)
	return book, nil
}

// applyBookPatch overwrites only the fields present in the patch.
// TotalCopies/AvailableCopies are handled by the caller.
func applyBookPatch(book *models.Book, in dto.UpdateBookDTO) {
	if in.Title != nil {
		book.Title = *in.Title
	}
	if in.Author != nil {
		book.Author = *in.Author
	}
	if in.ISBN != nil {
		book.ISBN = in.ISBN
	}
	if in.Description != nil {
		book.Description = in.Description
	}
	if in.Genre != nil {
		book.Genre = in.Genre
	}
	if in.PublishedYear != nil {
		book.PublishedYear = in.PublishedYear
	}
	if in.Publisher != nil {
		book.Publisher = in.Publisher
	}
	if in.CoverImageURL != nil {
		book.CoverImageURL = in.CoverImageURL
	}
	if in.IsActive != nil {
		book.IsActive = *in.IsActive
	}
}

func (s *bookService) Delete(ctx context.Context, id string) error {
	book, err := s.books.FindByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	// Soft delete by setting isActive to false; counters and existing
	// borrow records stay untouched.
	book.IsActive = false
	if err := s.books.Save(ctx, book); err != nil {
		return err
	}

	s.logger.Info("Book soft deleted", "title", book.Title, "book_id", book.ID)
	return nil
}

func (s *bookService) Borrow(ctx context.Context, bookID, userID string, notes *string) (*models.BorrowedBook, error) {
	book, err := s.books.FindByID(ctx, bookID, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	if !book.IsAvailable() {
		return nil, ErrBookNotAvailable
	}

	// Check if user already borrowed this book and hasn't returned it
	if _, err := s.borrows.FindOpenByBookAndUser(ctx, bookID, userID); err == nil {
		return nil, ErrAlreadyBorrowed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	record := &models.BorrowedBook{
		BookID:     bookID,
		UserID:     userID,
		Status:     models.BorrowStatusBorrowed,
		BorrowedAt: now,
		DueDate:    now.AddDate(0, 0, defaultBorrowDurationDays),
		Notes:      notes,
	}

	// The decrement and the ledger insert are one transaction; the
	// conditional update makes concurrent borrows of the last copy
	// resolve to a single winner.
	if err := s.borrows.CreateWithDecrement(ctx, record); err != nil {
		switch {
		case errors.Is(err, repository.ErrNoCopiesAvailable):
			return nil, ErrBookNotAvailable
		case errors.Is(err, repository.ErrOpenBorrowExists):
			return nil, ErrAlreadyBorrowed
		default:
			return nil, err
		}
	}

	book.AvailableCopies--
	record.Book = book

	s.logger.Info("Book borrowed", "title", book.Title, "user_id", userID)
	return record, nil
}

func (s *bookService) Return(ctx context.Context, borrowID, userID string) (*models.BorrowedBook, error) {
	// scoped to the calling user: someone else's loan surfaces as not-found
	record, err := s.borrows.FindByIDAndUser(ctx, borrowID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBorrowNotFound
		}
		return nil, err
	}

	if record.Status == models.BorrowStatusReturned {
		return nil, ErrAlreadyReturned
	}

	now := time.Now()
	if err := s.borrows.MarkReturnedWithIncrement(ctx, record.ID, userID, now); err != nil {
		if errors.Is(err, repository.ErrBorrowNotOpen) {
			return nil, ErrAlreadyReturned
		}
		return nil, err
	}

	record.Status = models.BorrowStatusReturned
	record.ReturnedAt = &now
	if record.Book != nil {
		record.Book.AvailableCopies++
		s.logger.Info("Book returned", "title", record.Book.Title, "user_id", userID)
	}

	return record, nil
}

func (s *bookService) GetBorrowedBooks(ctx context.Context, userID string) ([]models.BorrowedBook, error) {
	return s.borrows.ListOpenByUser(ctx, userID)
}

func (s *bookService) SearchExternal(ctx context.Context, query string, limit int) (*search.Result, error) {
	if limit < 1 {
		limit = defaultExternalLimit
	}
	if limit > maxExternalLimit {
		limit = maxExternalLimit
	}

	result, err := s.searcher.Search(ctx, query, limit)
	if err != nil {
		s.logger.Error("External book search failed", "error", err)
		return nil, err
	}
	return result, nil
}

// sortColumn maps the public sort key onto a real column; anything else
// falls back to created_at.
func sortColumn(sortBy string) string {
	switch sortBy {
	case "title":
		return "title"
	case "author":
		return "author"
	case "publishedYear", "published_year":
		return "published_year"
	default:
		return "created_at"
	}
}

func sortDirection(order string) string {
	if strings.EqualFold(order, "ASC") {
		return "ASC"
	}
	return "DESC"
}
