package models

import "time"

// Profile represents a row in the personal app's profiles table.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // never serialize
	FullName  *string   `json:"full_name"`
	AvatarURL *string   `json:"avatar_url"`
	AvatarKey string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
