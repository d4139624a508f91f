package models

import "time"

// AuthProvider records how a user signs in.
type AuthProvider string

const (
	ProviderEmail  AuthProvider = "EMAIL"
	ProviderGoogle AuthProvider = "GOOGLE"
)

// User is an identity, provisioned by registration or first Google login.
// Email and Provider do not change after creation.
type User struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Email        string       `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string       `gorm:"size:255;not null" json:"name"`
	PasswordHash *string      `gorm:"size:255" json:"-"`
	Provider     AuthProvider `gorm:"size:16;not null;default:EMAIL" json:"provider"`
	ProviderID   *string      `gorm:"size:255" json:"-"`
	AvatarURL    *string      `gorm:"size:1024" json:"avatarUrl"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}
