package model

import "time"

type User struct {
	ID          string    `json:"id" gorm:"primaryKey;size:128;not null" firestore:"-"`
	Email       string    `json:"email" gorm:"size:255;index" firestore:"email"`
	DisplayName string    `json:"displayName,omitempty" gorm:"size:255" firestore:"displayName"`
	IsAdmin     bool      `json:"isAdmin" gorm:"not null;default:false" firestore:"isAdmin"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// Identity is the caller resolved from a bearer token.
type Identity struct {
	UID     string
	Email   string
	Name    string
	IsAdmin bool
}
