package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered user in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string         `gorm:"not null" json:"name"`

	// Subscription state drives the daily message quota
	Subscribed        bool       `gorm:"default:false" json:"subscribed"`
	SubscriptionUntil *time.Time `json:"subscription_until,omitempty"`

	IntakeRecords []IntakeRecord `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsSubscriber reports whether the subscription is currently active.
func (u *User) IsSubscriber() bool {
	if !u.Subscribed {
		return false
	}
	if u.SubscriptionUntil != nil && u.SubscriptionUntil.Before(time.Now()) {
		return false
	}
	return true
}
