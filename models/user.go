package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleUser    UserRole = "user"
	RoleManager UserRole = "manager"
	RoleAdmin   UserRole = "admin"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         UserRole  `json:"role" gorm:"not null;default:'user'"`
	Avatar       string    `json:"avatar"`
	// Single-use password-reset credential, cleared after a successful reset
	ResetToken       string     `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// RequestStatus tracks the lifecycle of a manager application
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// ManagerRequest is a pending partner application. The password is hashed at
// submission time; approval copies it verbatim into the new manager account.
// Restaurant bootstrap fields seed the applicant's first restaurant.
type ManagerRequest struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	Name         string        `json:"name" gorm:"not null"`
	Email        string        `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string        `json:"-" gorm:"not null"`
	Status       RequestStatus `json:"status" gorm:"not null;default:'pending'"`

	RestaurantName string   `json:"restaurant_name"`
	Description    string   `json:"description"`
	Address        Address  `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	Phone          string   `json:"phone"`
	Capacity       int      `json:"capacity"`
	Cuisine        string   `json:"cuisine"`
	OpeningHours   string   `json:"opening_hours"`
	MenuJSON       string   `json:"-" gorm:"type:text"` // raw submitted menu, parsed at approval
	Images         []string `json:"images" gorm:"serializer:json"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
