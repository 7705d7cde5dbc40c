package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Post is a blog entry. Comments are owned by the post and kept in insertion order.
type Post struct {
	ID        string    `gorm:"primaryKey;size:24" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Author    string    `gorm:"index;size:24;not null" json:"author"`
	Comments  []Comment `gorm:"serializer:json;type:json" json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment lives only inside its parent Post.
type Comment struct {
	CommentID string    `json:"commentId"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// FindComment returns the index of the comment with the given id, or -1.
func (p *Post) FindComment(commentID string) int {
	for i := range p.Comments {
		if p.Comments[i].CommentID == commentID {
			return i
		}
	}
	return -1
}

// Clone returns a copy that shares no comment storage with p.
func (p Post) Clone() Post {
	out := p
	out.Comments = make([]Comment, len(p.Comments))
	copy(out.Comments, p.Comments)
	return out
}

// NewID returns a fresh 24-char hex identifier. Every backend uses the same
// shape so ids are interchangeable between a Mongo and a SQL deployment.
func NewID() string {
	return bson.NewObjectID().Hex()
}
