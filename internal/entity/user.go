package entity

import (
	"context"
	"time"
)

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleAgent   UserRole = "agent"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsSales reports whether the user should hear about new leads.
func (u *User) IsSales() bool {
	switch u.Role {
	case RoleAdmin, RoleManager, RoleAgent:
		return true
	}
	return false
}

type UserRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*User, error)
	// List returns every user ordered by creation time.
	List(ctx context.Context) ([]*User, error)
}
