package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"libraryhub/internal/config"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/middleware/auth"

	"gorm.io/gorm"
)

// Run seeds the admin account and the sample catalog. It is idempotent:
// existing data is left alone.
func Run(ctx context.Context, db *gorm.DB, cfg *config.Config, logger *slog.Logger) error {
	if err := createAdminUser(ctx, db, cfg.AdminEmail, cfg.AdminPassword, logger); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	if err := createSampleBooks(ctx, db, logger); err != nil {
		return fmt.Errorf("seed sample books: %w", err)
	}
	logger.Info("Initial data seeding completed successfully")
	return nil
}

// CreateAdmin creates an admin account with the given credentials if no user
// with that email exists yet.
func CreateAdmin(ctx context.Context, db *gorm.DB, email, password string, logger *slog.Logger) error {
	email = strings.ToLower(strings.TrimSpace(email))

	var existing models.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		logger.Info("Admin user already exists", "email", email)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:     email,
		FirstName: "System",
		LastName:  "Administrator",
		Password:  hashed,
		Role:      models.RoleAdmin,
		IsActive:  true,
	}
	if err := db.WithContext(ctx).Create(admin).Error; err != nil {
		return err
	}

	logger.Info("Admin user created", "email", email)
	return nil
}

func createAdminUser(ctx context.Context, db *gorm.DB, email, password string, logger *slog.Logger) error {
	return CreateAdmin(ctx, db, email, password, logger)
}

func createSampleBooks(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Book{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Sample books already exist")
		return nil
	}

	books := sampleBooks()
	for i := range books {
		if err := db.WithContext(ctx).Create(&books[i]).Error; err != nil {
			return err
		}
	}

	logger.Info("Created sample books", "count", len(books))
	return nil
}

func sampleBooks() []models.Book {
	return []models.Book{
		newBook("The Great Gatsby", "F. Scott Fitzgerald", "978-0-7432-7356-5",
			"A classic American novel set in the Jazz Age, exploring themes of wealth, love, idealism, and moral decay.",
			"Fiction", 1925, "Scribner", 3),
		newBook("To Kill a Mockingbird", "Harper Lee", "978-0-06-112008-4",
			"A gripping tale of racial injustice and childhood innocence in the American South.",
			"Fiction", 1960, "J.B. Lippincott & Co.", 2),
		newBook("1984", "George Orwell", "978-0-452-28423-4",
			"A dystopian social science fiction novel about totalitarian control and surveillance.",
			"Science Fiction", 1949, "Secker & Warburg", 4),
		newBook("Pride and Prejudice", "Jane Austen", "978-0-14-143951-8",
			"A romantic novel that critiques the British class system of the 19th century.",
			"Romance", 1813, "T. Egerton", 2),
		newBook("The Catcher in the Rye", "J.D. Salinger", "978-0-316-76948-0",
			"A coming-of-age story about teenage rebellion and angst.",
			"Fiction", 1951, "Little, Brown and Company", 3),
		newBook("JavaScript: The Definitive Guide", "David Flanagan", "978-1-491-95202-3",
			"A comprehensive guide to JavaScript programming language.",
			"Technology", 2020, "O'Reilly Media", 5),
		newBook("Clean Code", "Robert C. Martin", "978-0-13-235088-4",
			"A handbook of agile software craftsmanship.",
			"Technology", 2008, "Prentice Hall", 4),
		newBook("The Art of War", "Sun Tzu", "978-1-59030-963-7",
			"An ancient Chinese military treatise on strategy and tactics.",
			"Philosophy", 1910, "Various", 2),
	}
}

func newBook(title, author, isbn, description, genre string, year int, publisher string, copies int) models.Book {
	return models.Book{
		Title:           title,
		Author:          author,
		ISBN:            &isbn,
		Description:     &description,
		Genre:           &genre,
		PublishedYear:   &year,
		Publisher:       &publisher,
		TotalCopies:     copies,
		AvailableCopies: copies,
		IsActive:        true,
	}
}
