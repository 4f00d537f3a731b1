package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Account represents a user or admin identity
type Account struct {
	BaseModel
	Name         string         `gorm:"type:varchar(50);not null" json:"name"`
	Email        string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_accounts_email,where:deleted_at IS NULL" json:"email"`
	Password     string         `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	Role         Role           `gorm:"type:varchar(10);not null;default:user;index" json:"role"`
	TokenVersion string         `gorm:"type:varchar(64);default:''" json:"-"` // Bumped on logout
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// SetPassword hashes and sets the account's password
func (a *Account) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (a *Account) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(password))
	return err == nil
}

// AccountResponse is used for API responses (without sensitive data)
type AccountResponse struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Role         Role         `json:"role"`
	Capabilities []Capability `json:"capabilities"`
	CreatedAt    time.Time    `json:"created_at"`
}

// ToResponse converts Account to AccountResponse
func (a *Account) ToResponse() AccountResponse {
	return AccountResponse{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		Role:         a.Role,
		Capabilities: a.Role.Capabilities(),
		CreatedAt:    a.CreatedAt,
	}
}
