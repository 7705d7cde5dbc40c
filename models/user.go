package models

import "time"

// User is a registered author. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           string    `gorm:"primaryKey;size:24" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the projection served by the user lookup route.
type PublicUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public strips everything but the username and email.
func (u User) Public() PublicUser {
	return PublicUser{Username: u.Username, Email: u.Email}
}
