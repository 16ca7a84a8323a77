package models

import "time"

// BookingStatus represents all possible states of a table reservation
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

type Booking struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"user_id" gorm:"not null;index"`
	User   User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	// Snapshots taken at creation time so the booking renders without joins
	UserName   string `json:"user_name"`
	UserAvatar string `json:"user_avatar"`

	RestaurantID   uint       `json:"restaurant_id" gorm:"not null;index"`
	Restaurant     Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	RestaurantName string     `json:"restaurant_name"`

	Date            string         `json:"date" gorm:"not null"` // YYYY-MM-DD
	Time            string         `json:"time" gorm:"not null"` // HH:MM
	Guests          int            `json:"guests" gorm:"not null"`
	Phone           string         `json:"phone" gorm:"not null"`
	SpecialRequests string         `json:"special_requests"`
	PreOrders       []PreOrderItem `json:"pre_orders,omitempty" gorm:"foreignKey:BookingID"`

	Status BookingStatus `json:"status" gorm:"not null;default:'pending'"`

	IsPaid        bool           `json:"is_paid" gorm:"default:false"`
	PaidAt        *time.Time     `json:"paid_at,omitempty"`
	PaymentMethod string         `json:"payment_method,omitempty"`
	PaymentResult map[string]any `json:"payment_result,omitempty" gorm:"serializer:json"`

	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PreOrderItem is a menu item + quantity to be prepared for the reservation.
// Name and price are snapshots taken when the booking was placed.
type PreOrderItem struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	BookingID  uint    `json:"booking_id" gorm:"not null;index"`
	MenuItemID uint    `json:"menu_item_id" gorm:"not null"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity" gorm:"not null"`
}
