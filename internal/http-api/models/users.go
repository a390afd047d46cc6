package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"id"`
	Email       string     `gorm:"uniqueIndex:idx_user_email;size:255;not null" json:"email"`
	FirstName   string     `gorm:"size:255;not null" json:"first_name"`
	LastName    string     `gorm:"size:255;not null" json:"last_name"`
	Password    string     `gorm:"column:password_hash;not null" json:"-"` // Not show in JSON
	Role        string     `gorm:"default:'user';not null" json:"role"`   // only 2 roles: "user", "admin"
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// association
	BorrowedBooks []BorrowedBook `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return
}

func (User) TableName() string {
	return "users"
}
