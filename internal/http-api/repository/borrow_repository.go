package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"libraryhub/internal/http-api/models"

	"gorm.io/gorm"
)

var (
	// ErrNoCopiesAvailable means the conditional decrement matched no row:
	// the book has no free copies (or was deactivated concurrently).
	ErrNoCopiesAvailable = errors.New("no copies available")
	// ErrOpenBorrowExists means the user already holds an open loan for
	// this book.
	ErrOpenBorrowExists = errors.New("open borrow record already exists")
	// ErrBorrowNotOpen means the return update matched no row: the record
	// was already returned (possibly by a concurrent request).
	ErrBorrowNotOpen = errors.New("borrow record is not open")
)

type BorrowRepository interface {
	// CreateWithDecrement atomically takes one copy off the shelf and
	// writes the ledger row. The decrement is conditional on
	// available_copies > 0, so under contention at most one request per
	// remaining copy succeeds.
	CreateWithDecrement(ctx context.Context, record *models.BorrowedBook) error
	// MarkReturnedWithIncrement atomically closes an open loan and puts
	// the copy back.
	MarkReturnedWithIncrement(ctx context.Context, borrowID, userID string, returnedAt time.Time) error
	FindOpenByBookAndUser(ctx context.Context, bookID, userID string) (*models.BorrowedBook, error)
	FindByIDAndUser(ctx context.Context, borrowID, userID string) (*models.BorrowedBook, error)
	ListOpenByUser(ctx context.Context, userID string) ([]models.BorrowedBook, error)
}

type borrowRepository struct {
	db *gorm.DB
}

func NewBorrowRepository(db *gorm.DB) BorrowRepository {
	return &borrowRepository{db: db}
}

func (r *borrowRepository) CreateWithDecrement(ctx context.Context, record *models.BorrowedBook) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Book{}).
			Where("id = ? AND available_copies > 0 AND is_active = ?", record.BookID, true).
			UpdateColumn("available_copies", gorm.Expr("available_copies - 1"))
		if res.Error != nil {
			return fmt.Errorf("decrement available copies: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNoCopiesAvailable
		}

		// Re-check the one-open-loan rule inside the transaction; the
		// service pre-check can race with a concurrent borrow.
		var count int64
		if err := tx.Model(&models.BorrowedBook{}).
			Where("book_id = ? AND user_id = ? AND status = ?",
				record.BookID, record.UserID, models.BorrowStatusBorrowed).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check open borrow: %w", err)
		}
		if count > 0 {
			return ErrOpenBorrowExists
		}

		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("create borrow record: %w", err)
		}
		return nil
	})
}

func (r *borrowRepository) MarkReturnedWithIncrement(ctx context.Context, borrowID, userID string, returnedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.BorrowedBook{}).
			Where("id = ? AND user_id = ? AND status = ?",
				borrowID, userID, models.BorrowStatusBorrowed).
			Updates(map[string]interface{}{
				"status":      models.BorrowStatusReturned,
				"returned_at": returnedAt,
			})
		if res.Error != nil {
			return fmt.Errorf("mark returned: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrBorrowNotOpen
		}

		var record models.BorrowedBook
		if err := tx.First(&record, "id = ?", borrowID).Error; err != nil {
			return fmt.Errorf("reload borrow record: %w", err)
		}

		if err := tx.Model(&models.Book{}).
			Where("id = ?", record.BookID).
			UpdateColumn("available_copies", gorm.Expr("available_copies + 1")).Error; err != nil {
			return fmt.Errorf("increment available copies: %w", err)
		}
		return nil
	})
}

func (r *borrowRepository) FindOpenByBookAndUser(ctx context.Context, bookID, userID string) (*models.BorrowedBook, error) {
	var record models.BorrowedBook
	if err := r.db.WithContext(ctx).
		Where("book_id = ? AND user_id = ? AND status = ?",
			bookID, userID, models.BorrowStatusBorrowed).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *borrowRepository) FindByIDAndUser(ctx context.Context, borrowID, userID string) (*models.BorrowedBook, error) {
	var record models.BorrowedBook
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Where("id = ? AND user_id = ?", borrowID, userID).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *borrowRepository) ListOpenByUser(ctx context.Context, userID string) ([]models.BorrowedBook, error) {
	var records []models.BorrowedBook
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ? AND status = ?", userID, models.BorrowStatusBorrowed).
		Order("borrowed_at DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list borrowed books: %w", err)
	}
	return records, nil
}
