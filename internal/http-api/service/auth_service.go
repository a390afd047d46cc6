package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"libraryhub/internal/config"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/middleware/auth"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAccountLocked      = errors.New("account temporarily locked, try again later")
)

// dummy bcrypt hash compared against when the email is unknown, so both
// branches of a failed login take roughly the same time
const dummyHash = "$2a$12$7EqJtq98hPqEX7fNZaFWoOHi6VbU5h6K9v8u5rO0m3j0h6dX5r8e"

// Claims is the decoded identity an access token carries.
type Claims struct {
	UserID    string
	Email     string
	Role      string
	FirstName string
	LastName  string
}

type AuthService interface {
	SignUp(ctx context.Context, email, firstName, lastName, password, role string) (*models.User, error)
	Login(ctx context.Context, email, password string) (accessToken string, user *models.User, err error)
	ValidateToken(tokenString string) (*Claims, error)
	// GetProfile resolves an authenticated user id to its active account.
	GetProfile(ctx context.Context, userID string) (*models.User, error)
}

type authService struct {
	users       repository.UserRepository
	attempts    repository.LoginAttemptStore
	jwtSecret   string
	jwtExpiry   time.Duration
	maxAttempts int
	logger      *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	attempts repository.LoginAttemptStore,
	cfg *config.Config,
	logger *slog.Logger,
) AuthService {
	return &authService{
		users:       users,
		attempts:    attempts,
		jwtSecret:   cfg.JWTSecret,
		jwtExpiry:   cfg.JWTExpiry,
		maxAttempts: cfg.LoginMaxAttempts,
		logger:      logger,
	}
}

// SignUp registers a new account. Emails are stored lowercase.
func (s *authService) SignUp(ctx context.Context, email, firstName, lastName, password, role string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Password:  hashedPassword,
		Role:      role,
		IsActive:  true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("New user created", "email", user.Email, "role", user.Role)
	return user, nil
}

// Login authenticates a user and returns an access token upon success.
// Repeated failures lock the account for the configured window.
func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	// The lockout store is best-effort: if it is down, logins still work.
	failures, err := s.attempts.Failures(ctx, email)
	if err != nil {
		s.logger.Warn("login attempt store unavailable", "error", err)
	} else if failures >= int64(s.maxAttempts) {
		return "", nil, ErrAccountLocked
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		// dummy compare to mitigate timing attacks
		auth.VerifyPassword(dummyHash, password)
		s.recordFailure(ctx, email)
		return "", nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return "", nil, ErrUserInactive
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		s.recordFailure(ctx, email)
		return "", nil, ErrInvalidCredentials
	}

	if err := s.attempts.Reset(ctx, email); err != nil {
		s.logger.Warn("failed to reset login attempts", "error", err)
	}

	// Update last login
	now := time.Now()
	user.LastLoginAt = &now
	if err := s.users.Save(ctx, user); err != nil {
		return "", nil, err
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("User logged in", "email", user.Email)
	return accessToken, user, nil
}

func (s *authService) recordFailure(ctx context.Context, email string) {
	if _, err := s.attempts.RecordFailure(ctx, email); err != nil {
		s.logger.Warn("failed to record login failure", "error", err)
	}
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":        user.ID,
		"email":      user.Email,
		"role":       user.Role,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"exp":        time.Now().Add(s.jwtExpiry).Unix(),
		"iat":        time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, _ := mapClaims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{UserID: sub}
	claims.Email, _ = mapClaims["email"].(string)
	claims.Role, _ = mapClaims["role"].(string)
	claims.FirstName, _ = mapClaims["first_name"].(string)
	claims.LastName, _ = mapClaims["last_name"].(string)

	return claims, nil
}

func (s *authService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindActiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
