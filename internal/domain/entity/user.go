package entity

import (
	"errors"
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	IsSeller     bool      `json:"isSeller"`
	GoogleID     string    `json:"-"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func NewUser(name, email, passwordHash, phone string) (*User, error) {
	email = NormalizeEmail(email)
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("name cannot be empty")
	}
	if email == "" {
		return nil, errors.New("email cannot be empty")
	}
	now := time.Now().UTC()
	return &User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: passwordHash,
		Phone:        phone,
		Role:         RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
