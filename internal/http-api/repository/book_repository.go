package repository

import (
	"context"
	"errors"
	"fmt"

	"libraryhub/internal/http-api/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateISBN is returned when a unique-index violation on the ISBN
// column is detected at write time.
var ErrDuplicateISBN = errors.New("duplicate isbn")

// ListBooksParams carries the already-validated query parameters for a
// catalog page. SortBy must be a column name, not user input.
type ListBooksParams struct {
	Search    string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	// FindByID looks a book up by primary key. With activeOnly set,
	// soft-deleted books are invisible.
	FindByID(ctx context.Context, id string, activeOnly bool) (*models.Book, error)
	// FindByISBN searches all books, active or not. excludeID skips the
	// record being updated.
	FindByISBN(ctx context.Context, isbn string, excludeID string) (*models.Book, error)
	List(ctx context.Context, p ListBooksParams) ([]models.Book, int64, error)
	ListByAuthor(ctx context.Context, p ListBooksParams) ([]models.Book, int64, error)
	Save(ctx context.Context, book *models.Book) error
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateISBN
		}
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id string, activeOnly bool) (*models.Book, error) {
	var book models.Book
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) FindByISBN(ctx context.Context, isbn string, excludeID string) (*models.Book, error) {
	var book models.Book
	q := r.db.WithContext(ctx).Where("isbn = ?", isbn)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) List(ctx context.Context, p ListBooksParams) ([]models.Book, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Book{}).Where("is_active = ?", true)
	if p.Search != "" {
		q = q.Where("title ILIKE ?", "%"+p.Search+"%")
	}
	return r.page(q, p)
}

// ListByAuthor is the fallback query: same visibility rules, but the search
// term matches the author column instead of the title.
func (r *bookRepository) ListByAuthor(ctx context.Context, p ListBooksParams) ([]models.Book, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Book{}).
		Where("is_active = ?", true).
		Where("author ILIKE ?", "%"+p.Search+"%")
	return r.page(q, p)
}

func (r *bookRepository) page(q *gorm.DB, p ListBooksParams) ([]models.Book, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	var list []models.Book
	order := fmt.Sprintf("%s %s", p.SortBy, p.SortOrder)
	if err := q.Order(order).Limit(p.Limit).Offset(p.Offset).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	return list, total, nil
}

func (r *bookRepository) Save(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Save(book).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateISBN
		}
		return fmt.Errorf("save book: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique-index violation
// (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
