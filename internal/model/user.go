package model

import "time"

// User represents an account as stored in the `users` table.  The password
// hash never leaves the server, so it carries no JSON name.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address, compared case-sensitively.
//  PasswordHash – bcrypt hashed password.
//  Name         – optional display name.
//  CreatedAt    – timestamp of registration.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         *string   `json:"name"`
	CreatedAt    time.Time `json:"-"`
}

// UserSummary is the public projection returned by register and login.
type UserSummary struct {
	ID    uint64  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

// Summary returns the public projection of u.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Name: u.Name}
}
