package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/search"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockBookRepository mocks the BookRepository interface
type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) Create(ctx context.Context, book *models.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookRepository) FindByID(ctx context.Context, id string, activeOnly bool) (*models.Book, error) {
	args := m.Called(ctx, id, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookRepository) FindByISBN(ctx context.Context, isbn string, excludeID string) (*models.Book, error) {
	args := m.Called(ctx, isbn, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookRepository) List(ctx context.Context, p repository.ListBooksParams) ([]models.Book, int64, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Book), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookRepository) ListByAuthor(ctx context.Context, p repository.ListBooksParams) ([]models.Book, int64, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Book), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookRepository) Save(ctx context.Context, book *models.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

// MockBorrowRepository mocks the BorrowRepository interface
type MockBorrowRepository struct {
	mock.Mock
}

func (m *MockBorrowRepository) CreateWithDecrement(ctx context.Context, record *models.BorrowedBook) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockBorrowRepository) MarkReturnedWithIncrement(ctx context.Context, borrowID, userID string, returnedAt time.Time) error {
	args := m.Called(ctx, borrowID, userID, returnedAt)
	return args.Error(0)
}

func (m *MockBorrowRepository) FindOpenByBookAndUser(ctx context.Context, bookID, userID string) (*models.BorrowedBook, error) {
	args := m.Called(ctx, bookID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BorrowedBook), args.Error(1)
}

func (m *MockBorrowRepository) FindByIDAndUser(ctx context.Context, borrowID, userID string) (*models.BorrowedBook, error) {
	args := m.Called(ctx, borrowID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BorrowedBook), args.Error(1)
}

func (m *MockBorrowRepository) ListOpenByUser(ctx context.Context, userID string) ([]models.BorrowedBook, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BorrowedBook), args.Error(1)
}

// MockExternalSearcher mocks the ExternalSearcher interface
type MockExternalSearcher struct {
	mock.Mock
}

func (m *MockExternalSearcher) Search(ctx context.Context, query string, limit int) (*search.Result, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*search.Result), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBookService(books repository.BookRepository, borrows repository.BorrowRepository, searcher ExternalSearcher) BookService {
	return NewBookService(books, borrows, searcher, testLogger())
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCreateBook_Success(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	svc := newTestBookService(mockBooks, mockBorrows, nil)

	mockBooks.On("FindByISBN", mock.Anything, "978-0-13-235088-4", "").Return(nil, gorm.ErrRecordNotFound)
	mockBooks.On("Create", mock.Anything, mock.AnythingOfType("*models.Book")).Return(nil)

	book, err := svc.Create(context.Background(), dto.CreateBookDTO{
		Title:       "Clean Code",
		Author:      "Robert C. Martin",
		ISBN:        strPtr("978-0-13-235088-4"),
		TotalCopies: intPtr(4),
	})

	assert.NoError(t, err)
	assert.NotNil(t, book)
	assert.Equal(t, "Clean Code", book.Title)
	assert.Equal(t, 4, book.TotalCopies)
	assert.Equal(t, 4, book.AvailableCopies)
	assert.True(t, book.IsActive)
	mockBooks.AssertExpectations(t)
}

func TestCreateBook_DefaultsToOneCopy(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	svc := newTestBookService(mockBooks, mockBorrows, nil)

	mockBooks.On("Create", mock.Anything, mock.AnythingOfType("*models.Book")).Return(nil)

	book, err := svc.Create(context.Background(), dto.CreateBookDTO{
		Title:  "The Art of War",
		Author: "Sun Tzu",
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, book.TotalCopies)
	assert.Equal(t, 1, book.AvailableCopies)
	mockBooks.AssertExpectations(t)
}

func TestCreateBook_ISBNExists(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	svc := newTestBookService(mockBooks, mockBorrows, nil)

	existing := &models.Book{ID: uuid.New().String(), Title: "Clean Code"}
	mockBooks.On("FindByISBN", mock.Anything, "978-0-13-235088-4", "").Return(existing, nil)

	book, err := svc.Create(context.Background(), dto.CreateBookDTO{
		Title:  "Clean Code",
		Author: "Robert C. Martin",
		ISBN:   strPtr("978-0-13-235088-4"),
	})

	assert.Error(t, err)
	assert.Equal(t, ErrISBNExists, err)
	assert.Nil(t, book)
	mockBooks.AssertExpectations(t)
}

func TestCreateBook_DuplicateISBNRace(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	svc := newTestBookService(mockBooks, mockBorrows, nil)

	// Pre-check misses, the insert itself hits the unique index.
	mockBooks.On("FindByISBN", mock.Anything, "978-0-452-28423-4", "").Return(nil, gorm.ErrRecordNotFound)
	mockBooks.On("Create", mock.Anything, mock.AnythingOfType("*models.Book")).Return(repository.ErrDuplicateISBN)

	book, err := svc.Create(context.Background(), dto.CreateBookDTO{
		Title:  "1984",
		Author: "George Orwell",
		ISBN:   strPtr("978-0-452-28423-4"),
	})

	assert.Equal(t, ErrISBNExists, err)
	assert.Nil(t, book)
	mockBooks.AssertExpectations(t)
}

func TestCreateBook_BlankTitle(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	svc := newTestBookService(mockBooks, mockBorrows, nil)

	book, err := svc.Create(context.Background(), dto.CreateBookDTO{
		Title:  "   ",
		Author: "Somebody",
	})

	assert.Error(t, err)
	assert.Nil(t, book)
	mockBooks.AssertNotCalled(t, "Create")
}

func TestListBooks_ClampsLimit(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	svc := newTestBookService(mockBooks, mockBorrows, nil)

	expected := repository.ListBooksParams{
		SortBy:    "created_at",
		SortOrder: "DESC",
		Limit:     100,
		Offset:    0,
	}
	mockBooks.On("List", mock.Anything, expected).Return([]models.Book{}, int64(0), nil)

	page, err := svc.List(context.Background(), dto.BookQueryDTO{Page: 0, Limit: 500})

	assert.NoError(t, err)
	assert.Equal(t, 100, page.Limit)
	assert.Equal(t, 1, page.Page)
	mockBooks.AssertExpectations(t)
}

func TestListBooks_ShortSearchTermIgnored(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	svc := newTestBookService(mockBooks, mockBorrows, nil)

	// a single-character term is treated as no search at all
	expected := repository.ListBooksParams{
		Search:    "",
		SortBy:    "created_at",
		SortOrder: "DESC",
		Limit:     10,
		Offset:    0,
	}
	mockBooks.On("List", mock.Anything, expected).Return([]models.Book{}, int64(0), nil)

	_, err := svc.List(context.Background(), dto.BookQueryDTO{Search: "g"})

	assert.NoError(t, err)
	mockBooks.AssertNotCalled(t, "ListByAuthor")
	mockBooks.AssertExpectations(t)
}

func TestListBooks_AuthorFallback(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	svc := newTestBookService(mockBooks, mockBorrows, nil)

	params := repository.ListBooksParams{
		Search:    "fitzgerald",
		SortBy:    "created_at",
		SortOrder: "DESC",
		Limit:     10,
		Offset:    0,
	}
	byAuthor := []models.Book{{Title: "The Great Gatsby", Author: "F. Scott Fitzgerald"}}

	mockBooks.On("List", mock.Anything, params).Return([]models.Book{}, int64(0), nil)
	mockBooks.On("ListByAuthor", mock.Anything, params).Return(byAuthor, int64(1), nil)

	page, err := svc.List(context.Background(), dto.BookQueryDTO{Search: "fitzgerald"})

	assert.NoError(t, err)
	assert.Len(t, page.Books, 1)
	assert.Equal(t, "The Great Gatsby", page.Books[0].Title)
	assert.Equal(t, int64(1), page.TotalPages)
	mockBooks.AssertExpectations(t)
}

func TestListBooks_TitleMatchSkipsAuthorQuery(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	svc := newTestBookService(mockBooks, mockBorrows, nil)

	byTitle := []models.Book{{Title: "The Great Gatsby"}}
	mockBooks.On("List", mock.Anything, mock.AnythingOfType("repository.ListBooksParams")).
		Return(byTitle, int64(1), nil)

	page, err := svc.List(context.Background(), dto.BookQueryDTO{Search: "gatsby"})

	assert.NoError(t, err)
	assert.Len(t, page.Books, 1)
	mockBooks.AssertNotCalled(t, "ListByAuthor")
	mockBooks.AssertExpectations(t)
}

func TestGetBookByID_NotFound(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	svc := newTestBookService(mockBooks, mockBorrows, nil)

	mockBooks.On("FindByID", mock.Anything, "missing-id", true).Return(nil, gorm.ErrRecordNotFound)

	book, err := svc.GetByID(context.Background(), "missing-id")

	assert.Equal(t, ErrBookNotFound, err)
	assert.Nil(t, book)
	mockBooks.AssertExpectations(t)
}

func TestUpdateBook_RecomputesAvailableCopies(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	svc := newTestBookService(mockBooks, mockBorrows, nil)

	// 5 total, 3 available: 2 copies out on loan
	existing := &models.Book{
		ID:              "book-id",
		Title:           "1984",
		Author:          "George Orwell",
		TotalCopies:     5,
		AvailableCopies: 3,
		IsActive:        true,
	}
	mockBooks.On("FindByID", mock.Anything, "book-id", false).Return(existing, nil)
	mockBooks.On("Save", mock.Anything, mock.AnythingOfType("*models.Book")).Return(nil)

	book, err := svc.Update(context.Background(), "book-id", dto.UpdateBookDTO{TotalCopies: intPtr(10)})

	assert.NoError(t, err)
	assert.Equal(t, 10, book.TotalCopies)
	assert.Equal(t, 8, book.AvailableCopies)
	mockBooks.AssertExpectations(t)
}

func TestUpdateBook_ShrinkBelowLoanedCopies(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	svc := newTestBookService(mockBooks, mockBorrows, nil)

	// 3 total, 1 available: 2 copies out on loan, so the total cannot drop to 1
	existing := &models.Book{
		ID:              "book-id",
		Title:           "1984",
		TotalCopies:     3,
		AvailableCopies: 1,
		IsActive:        true,
	}
	mockBooks.On("FindByID", mock.Anything, "book-id", false).Return(existing, nil)

	book, err := svc.Update(context.Background(), "book-id", dto.UpdateBookDTO{TotalCopies: intPtr(1)})

	assert.Equal(t, ErrInsufficientCopies, err)
	assert.Nil(t, book)
	mockBooks.AssertNotCalled(t, "Save")
	mockBooks.AssertExpectations(t)
}

func TestUpdateBook_ISBNConflictWithOtherBook(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	svc := newTestBookService(mockBooks, mockBorrows, nil)

	existing := &models.Book{ID: "book-id", Title: "1984", IsActive: true}
	other := &models.Book{ID: "other-id", Title: "Animal Farm"}
	mockBooks.On("FindByID", mock.Anything, "book-id", false).Return(existing, nil)
	mockBooks.On("FindByISBN", mock.Anything, "978-0-452-28423-4", "book-id").Return(other, nil)

	book, err := svc.Update(context.Background(), "book-id", dto.UpdateBookDTO{ISBN: strPtr("978-0-452-28423-4")})

	assert.Equal(t, ErrISBNExists, err)
	assert.Nil(t, book)
	mockBooks.AssertExpectations(t)
}

func TestDeleteBook_SoftDeletes(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	svc := newTestBookService(mockBooks, mockBorrows, nil)

	existing := &models.Book{ID: "book-id", Title: "1984", IsActive: true, TotalCopies: 3, AvailableCopies: 2}
	mockBooks.On("FindByID", mock.Anything, "book-id", false).Return(existing, nil)
	mockBooks.On("Save", mock.Anything, mock.MatchedBy(func(b *models.Book) bool {
		return !b.IsActive && b.TotalCopies == 3 && b.AvailableCopies == 2
	})).Return(nil)

	err := svc.Delete(context.Background(), "book-id")

	assert.NoError(t, err)
	mockBooks.AssertExpectations(t)
}

func TestBorrowBook_Success(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	svc := newTestBookService(mockBooks, mockBorrows, nil)

	book := &models.Book{ID: "book-id", Title: "1984", TotalCopies: 3, AvailableCopies: 2, IsActive: true}
	mockBooks.On("FindByID", mock.Anything, "book-id", true).Return(book, nil)
	mockBorrows.On("FindOpenByBookAndUser", mock.Anything, "book-id", "user-id").Return(nil, gorm.ErrRecordNotFound)
	mockBorrows.On("CreateWithDecrement", mock.Anything, mock.AnythingOfType("*models.BorrowedBook")).Return(nil)

	record, err := svc.Borrow(context.Background(), "book-id", "user-id", nil)

	assert.NoError(t, err)
	assert.NotNil(t, record)
	assert.Equal(t, models.BorrowStatusBorrowed, record.Status)
	assert.Equal(t, "user-id", record.UserID)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 14), record.DueDate, 5*time.Second)
	assert.Equal(t, 1, record.Book.AvailableCopies)
	mockBooks.AssertExpectations(t)
	mockBorrows.AssertExpectations(t)
}

func TestBorrowBook_NotAvailable(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	svc := newTestBookService(mockBooks, mockBorrows, nil)

	book := &models.Book{ID: "book-id", Title: "1984", TotalCopies: 2, AvailableCopies: 0, IsActive: true}
	mockBooks.On("FindByID", mock.Anything, "book-id", true).Return(book, nil)

	record, err := svc.Borrow(context.Background(), "book-id", "user-id", nil)

	assert.Equal(t, ErrBookNotAvailable, err)
	assert.Nil(t, record)
	mockBorrows.AssertNotCalled(t, "CreateWithDecrement")
}

func TestBorrowBook_AlreadyBorrowed(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	svc := newTestBookService(mockBooks, mockBorrows, nil)

	book := &models.Book{ID: "book-id", Title: "1984", TotalCopies: 2, AvailableCopies: 1, IsActive: true}
	open := &models.BorrowedBook{ID: "borrow-id", BookID: "book-id", UserID: "user-id", Status: models.BorrowStatusBorrowed}
	mockBooks.On("FindByID", mock.Anything, "book-id", true).Return(book, nil)
	mockBorrows.On("FindOpenByBookAndUser", mock.Anything, "book-id", "user-id").Return(open, nil)

	record, err := svc.Borrow(context.Background(), "book-id", "user-id", nil)

	assert.Equal(t, ErrAlreadyBorrowed, err)
	assert.Nil(t, record)
	mockBorrows.AssertNotCalled(t, "CreateWithDecrement")
}

func TestBorrowBook_LostRace(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	svc := newTestBookService(mockBooks, mockBorrows, nil)

	// the pre-checks pass, but another request grabs the last copy first
	book := &models.Book{ID: "book-id", Title: "1984", TotalCopies: 1, AvailableCopies: 1, IsActive: true}
	mockBooks.On("FindByID", mock.Anything, "book-id", true).Return(book, nil)
	mockBorrows.On("FindOpenByBookAndUser", mock.Anything, "book-id", "user-id").Return(nil, gorm.ErrRecordNotFound)
	mockBorrows.On("CreateWithDecrement", mock.Anything, mock.AnythingOfType("*models.BorrowedBook")).
		Return(repository.ErrNoCopiesAvailable)

	record, err := svc.Borrow(context.Background(), "book-id", "user-id", nil)

	assert.Equal(t, ErrBookNotAvailable, err)
	assert.Nil(t, record)
	mockBorrows.AssertExpectations(t)
}

func TestReturnBook_Success(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	svc := newTestBookService(mockBooks, mockBorrows, nil)

	book := &models.Book{ID: "book-id", Title: "1984", TotalCopies: 2, AvailableCopies: 1, IsActive: true}
	record := &models.BorrowedBook{
		ID:     "borrow-id",
		BookID: "book-id",
		UserID: "user-id",
		Status: models.BorrowStatusBorrowed,
		Book:   book,
	}
	mockBorrows.On("FindByIDAndUser", mock.Anything, "borrow-id", "user-id").Return(record, nil)
	mockBorrows.On("MarkReturnedWithIncrement", mock.Anything, "borrow-id", "user-id", mock.AnythingOfType("time.Time")).
		Return(nil)

	returned, err := svc.Return(context.Background(), "borrow-id", "user-id")

	assert.NoError(t, err)
	assert.Equal(t, models.BorrowStatusReturned, returned.Status)
	assert.NotNil(t, returned.ReturnedAt)
	assert.Equal(t, 2, returned.Book.AvailableCopies)
	mockBorrows.AssertExpectations(t)
}

func TestReturnBook_NotFound(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	svc := newTestBookService(mockBooks, mockBorrows, nil)

	// a loan owned by someone else is indistinguishable from a missing one
	mockBorrows.On("FindByIDAndUser", mock.Anything, "borrow-id", "user-id").Return(nil, gorm.ErrRecordNotFound)

	returned, err := svc.Return(context.Background(), "borrow-id", "user-id")

	assert.Equal(t, ErrBorrowNotFound, err)
	assert.Nil(t, returned)
}

func TestReturnBook_AlreadyReturned(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	svc := newTestBookService(mockBooks, mockBorrows, nil)

	returnedAt := time.Now().Add(-time.Hour)
	record := &models.BorrowedBook{
		ID:         "borrow-id",
		UserID:     "user-id",
		Status:     models.BorrowStatusReturned,
		ReturnedAt: &returnedAt,
	}
	mockBorrows.On("FindByIDAndUser", mock.Anything, "borrow-id", "user-id").Return(record, nil)

	returned, err := svc.Return(context.Background(), "borrow-id", "user-id")

	assert.Equal(t, ErrAlreadyReturned, err)
	assert.Nil(t, returned)
	mockBorrows.AssertNotCalled(t, "MarkReturnedWithIncrement")
}

func TestSearchExternal_ClampsLimit(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	mockSearcher := new(MockExternalSearcher)
	svc := newTestBookService(mockBooks, mockBorrows, mockSearcher)

	result := &search.Result{Books: []search.ExternalBook{}, Total: 0, Query: "golang"}
	mockSearcher.On("Search", mock.Anything, "golang", 50).Return(result, nil)

	_, err := svc.SearchExternal(context.Background(), "golang", 200)

	assert.NoError(t, err)
	mockSearcher.AssertExpectations(t)
}

func TestSearchExternal_Unavailable(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockBorrows := new(MockBorrowRepository)
	mockSearcher := new(MockExternalSearcher)
	svc := newTestBookService(mockBooks, mockBorrows, mockSearcher)

	mockSearcher.On("Search", mock.Anything, "golang", 10).Return(nil, search.ErrUnavailable)

	result, err := svc.SearchExternal(context.Background(), "golang", 0)

	assert.Equal(t, search.ErrUnavailable, err)
	assert.Nil(t, result)
	mockSearcher.AssertExpectations(t)
}

// fakeInventory backs both repositories with shared in-memory state so
// concurrent borrows contend on the same copy counter the way they would on
// the database row.
type fakeInventory struct {
	mu      sync.Mutex
	book    models.Book
	borrows map[string]*models.BorrowedBook
}

func newFakeInventory(book models.Book) *fakeInventory {
	return &fakeInventory{book: book, borrows: make(map[string]*models.BorrowedBook)}
}

func (f *fakeInventory) Create(ctx context.Context, book *models.Book) error { return nil }

func (f *fakeInventory) FindByID(ctx context.Context, id string, activeOnly bool) (*models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id != f.book.ID {
		return nil, gorm.ErrRecordNotFound
	}
	snapshot := f.book
	return &snapshot, nil
}

func (f *fakeInventory) FindByISBN(ctx context.Context, isbn, excludeID string) (*models.Book, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInventory) List(ctx context.Context, p repository.ListBooksParams) ([]models.Book, int64, error) {
	return nil, 0, nil
}

func (f *fakeInventory) ListByAuthor(ctx context.Context, p repository.ListBooksParams) ([]models.Book, int64, error) {
	return nil, 0, nil
}

func (f *fakeInventory) Save(ctx context.Context, book *models.Book) error { return nil }

func (f *fakeInventory) CreateWithDecrement(ctx context.Context, record *models.BorrowedBook) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.book.AvailableCopies <= 0 || !f.book.IsActive {
		return repository.ErrNoCopiesAvailable
	}
	for _, b := range f.borrows {
		if b.BookID == record.BookID && b.UserID == record.UserID && b.Status == models.BorrowStatusBorrowed {
			return repository.ErrOpenBorrowExists
		}
	}
	f.book.AvailableCopies--
	record.ID = uuid.New().String()
	f.borrows[record.ID] = record
	return nil
}

func (f *fakeInventory) MarkReturnedWithIncrement(ctx context.Context, borrowID, userID string, returnedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.borrows[borrowID]
	if !ok || record.UserID != userID || record.Status != models.BorrowStatusBorrowed {
		return repository.ErrBorrowNotOpen
	}
	record.Status = models.BorrowStatusReturned
	record.ReturnedAt = &returnedAt
	f.book.AvailableCopies++
	return nil
}

func (f *fakeInventory) FindOpenByBookAndUser(ctx context.Context, bookID, userID string) (*models.BorrowedBook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.borrows {
		if b.BookID == bookID && b.UserID == userID && b.Status == models.BorrowStatusBorrowed {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInventory) FindByIDAndUser(ctx context.Context, borrowID, userID string) (*models.BorrowedBook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.borrows[borrowID]
	if !ok || record.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (f *fakeInventory) ListOpenByUser(ctx context.Context, userID string) ([]models.BorrowedBook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BorrowedBook
	for _, b := range f.borrows {
		if b.UserID == userID && b.Status == models.BorrowStatusBorrowed {
			out = append(out, *b)
		}
	}
	return out, nil
}

func TestBorrowBook_ConcurrentLastCopy(t *testing.T) {
	inv := newFakeInventory(models.Book{
		ID:              "book-id",
		Title:           "The Great Gatsby",
		TotalCopies:     1,
		AvailableCopies: 1,
		IsActive:        true,
	})
	svc := newTestBookService(inv, inv, nil)

	const workers = 25
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := uuid.New().String()
			_, err := svc.Borrow(context.Background(), "book-id", userID, nil)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var wins, losses int
	for err := range errs {
		switch err {
		case nil:
			wins++
		case ErrBookNotAvailable:
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins, "exactly one request should take the last copy")
	assert.Equal(t, workers-1, losses)
	assert.Equal(t, 0, inv.book.AvailableCopies)
	assert.Len(t, inv.borrows, 1)
}

func TestBorrowReturnRoundTrip(t *testing.T) {
	inv := newFakeInventory(models.Book{
		ID:              "book-id",
		Title:           "Pride and Prejudice",
		TotalCopies:     2,
		AvailableCopies: 2,
		IsActive:        true,
	})
	svc := newTestBookService(inv, inv, nil)
	ctx := context.Background()

	record, err := svc.Borrow(ctx, "book-id", "user-id", strPtr("summer reading"))
	assert.NoError(t, err)
	assert.Equal(t, 1, inv.book.AvailableCopies)

	// the same user cannot take a second copy of the same title
	_, err = svc.Borrow(ctx, "book-id", "user-id", nil)
	assert.Equal(t, ErrAlreadyBorrowed, err)

	returned, err := svc.Return(ctx, record.ID, "user-id")
	assert.NoError(t, err)
	assert.Equal(t, models.BorrowStatusReturned, returned.Status)
	assert.Equal(t, 2, inv.book.AvailableCopies)

	// double return is rejected
	_, err = svc.Return(ctx, record.ID, "user-id")
	assert.Equal(t, ErrAlreadyReturned, err)
}
