// File: /models/post.go
package models

import (
	"time"
)

// Post is the aggregate root: likes, comments and the image reference are
// only ever mutated through it.
type Post struct {
	ID         string             `json:"id" gorm:"primaryKey;size:191"`
	AuthorID   string             `json:"author_id" gorm:"not null;index;size:191"`
	Content    string             `json:"content" gorm:"type:text;not null"`
	Tags       StringSlice        `json:"tags" gorm:"type:json"`
	Variant    string             `json:"variant" gorm:"not null;default:'plain';size:20"`
	Experiment *ExperimentDetails `json:"experiment,omitempty" gorm:"type:json"`

	// Image asset reference; all four fields are nil/zero when no image is set.
	ImageURL    *string `json:"image_url" gorm:"size:500"`
	ImageWidth  int     `json:"image_width" gorm:"default:0"`
	ImageHeight int     `json:"image_height" gorm:"default:0"`
	ImageSize   int64   `json:"image_size" gorm:"default:0"`

	Views     uint64    `json:"views" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author   User       `json:"author" gorm:"foreignKey:AuthorID"`
	Likes    []PostLike `json:"likes" gorm:"foreignKey:PostID"`
	Comments []Comment  `json:"comments" gorm:"foreignKey:PostID"`
}

// PostLike is one membership row of a post's like set. The composite unique
// index is what makes the set semantics structural rather than advisory.
type PostLike struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"not null;size:191;uniqueIndex:idx_post_likes_post_user"`
	UserID    string    `json:"user_id" gorm:"not null;size:191;uniqueIndex:idx_post_likes_post_user"`
	CreatedAt time.Time `json:"created_at"`
}

// ImageAsset is the stored-asset reference returned by the media pipeline.
type ImageAsset struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"`
}

// ImageRef returns the post's asset reference, or nil when no image is set.
func (p *Post) ImageRef() *ImageAsset {
	if p.ImageURL == nil || *p.ImageURL == "" {
		return nil
	}
	return &ImageAsset{
		URL:    *p.ImageURL,
		Width:  p.ImageWidth,
		Height: p.ImageHeight,
		Size:   p.ImageSize,
	}
}

// LikedBy reports membership of userID in the post's like set.
func (p *Post) LikedBy(userID string) bool {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

// PostView is the wire shape for a post.
type PostView struct {
	ID         string             `json:"id"`
	Author     AuthorSummary      `json:"author"`
	Content    string             `json:"content"`
	Tags       StringSlice        `json:"tags"`
	Variant    string             `json:"variant"`
	Experiment *ExperimentDetails `json:"experiment,omitempty"`
	Image      *ImageAsset        `json:"image"`
	Likes      []string           `json:"likes"`
	LikesCount int                `json:"likes_count"`
	Comments   []CommentView      `json:"comments"`
	Views      uint64             `json:"views"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// View converts the aggregate to its response shape.
func (p *Post) View() PostView {
	likes := make([]string, 0, len(p.Likes))
	for _, l := range p.Likes {
		likes = append(likes, l.UserID)
	}

	comments := make([]CommentView, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, c.View())
	}

	return PostView{
		ID:         p.ID,
		Author:     p.Author.Summary(),
		Content:    p.Content,
		Tags:       p.Tags,
		Variant:    p.Variant,
		Experiment: p.Experiment,
		Image:      p.ImageRef(),
		Likes:      likes,
		LikesCount: len(likes),
		Comments:   comments,
		Views:      p.Views,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
