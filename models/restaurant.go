package models

import "time"

// Address is a structured location. Handlers accept either a plain string
// (wrapped into Street) or a full JSON object.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type Restaurant struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	OwnerID      uint       `json:"owner_id" gorm:"not null;index"`
	Owner        User       `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Name         string     `json:"name" gorm:"not null"`
	Cuisine      string     `json:"cuisine"`
	Address      Address    `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	Description  string     `json:"description"`
	Capacity     int        `json:"capacity" gorm:"not null"`
	OpeningHours string     `json:"opening_hours"`
	ContactPhone string     `json:"contact_phone"`
	Images       []string   `json:"images" gorm:"serializer:json"`
	Rating       float64    `json:"rating" gorm:"default:0"`
	MenuItems    []MenuItem `json:"menu_items,omitempty" gorm:"foreignKey:RestaurantID"`
	Reviews      []Review   `json:"reviews,omitempty" gorm:"foreignKey:RestaurantID"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type MenuItem struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RestaurantID uint      `json:"restaurant_id" gorm:"not null;index"`
	Name         string    `json:"name" gorm:"not null"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	Price        float64   `json:"price" gorm:"not null"`
	Images       []string  `json:"images" gorm:"serializer:json"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Review carries a snapshot of the author's name and avatar at write time.
// One review per (restaurant, user) — enforced by upsert in the handler and
// backed by the composite unique index.
type Review struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RestaurantID uint      `json:"restaurant_id" gorm:"not null;uniqueIndex:idx_restaurant_user"`
	UserID       uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_restaurant_user"`
	UserName     string    `json:"user_name" gorm:"not null"`
	UserAvatar   string    `json:"user_avatar"`
	Rating       int       `json:"rating" gorm:"not null"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
