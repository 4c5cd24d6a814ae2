// File: /models/user.go
package models

import (
	"time"
)

// User is the author record this service reads. Accounts are issued and
// verified by the identity service; this subsystem never writes credentials.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:191"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null;size:50"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Avatar    *string   `json:"avatar" gorm:"size:500"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Posts []Post `json:"-" gorm:"foreignKey:AuthorID"`
}

// AuthorSummary is the trimmed author shape embedded in post responses.
type AuthorSummary struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Avatar   *string `json:"avatar"`
}

// Summary converts a User to its response shape.
func (u *User) Summary() AuthorSummary {
	return AuthorSummary{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.Avatar,
	}
}
