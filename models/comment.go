package models

import (
	"time"
)

// Comment rows are append-only: nothing in this service updates or deletes them.
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;size:191"`
	PostID    string    `json:"post_id" gorm:"not null;index;size:191"`
	AuthorID  string    `json:"author_id" gorm:"not null;index;size:191"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`

	Author User `json:"author" gorm:"foreignKey:AuthorID"`
}

// CommentView is the wire shape for a comment.
type CommentView struct {
	ID        string        `json:"id"`
	AuthorID  string        `json:"author_id"`
	Author    AuthorSummary `json:"author"`
	Text      string        `json:"text"`
	CreatedAt time.Time     `json:"created_at"`
}

// View converts a comment to its response shape.
func (c *Comment) View() CommentView {
	return CommentView{
		ID:        c.ID,
		AuthorID:  c.AuthorID,
		Author:    c.Author.Summary(),
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}
