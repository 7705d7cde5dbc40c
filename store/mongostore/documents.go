package mongostore

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/cppla/aiblog/models"
)

type userDocument struct {
	ID        bson.ObjectID `bson:"_id"`
	Username  string        `bson:"username"`
	Email     string        `bson:"email"`
	Password  string        `bson:"password"`
	CreatedAt time.Time     `bson:"createdAt"`
}

type postDocument struct {
	ID        bson.ObjectID     `bson:"_id"`
	Title     string            `bson:"title"`
	Content   string            `bson:"content"`
	Author    string            `bson:"author"`
	Comments  []commentDocument `bson:"comments"`
	CreatedAt time.Time         `bson:"createdAt"`
}

type commentDocument struct {
	CommentID string    `bson:"commentId"`
	Author    string    `bson:"author"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"createdAt"`
}

func newUserDocument(u *models.User) (userDocument, error) {
	oid, err := bson.ObjectIDFromHex(u.ID)
	if err != nil {
		return userDocument{}, fmt.Errorf("user id %q: %w", u.ID, err)
	}
	return userDocument{
		ID:        oid,
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.PasswordHash,
		CreatedAt: u.CreatedAt,
	}, nil
}

func (d userDocument) model() models.User {
	return models.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt,
	}
}

func newPostDocument(p *models.Post) (postDocument, error) {
	oid, err := bson.ObjectIDFromHex(p.ID)
	if err != nil {
		return postDocument{}, fmt.Errorf("post id %q: %w", p.ID, err)
	}
	comments := make([]commentDocument, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, commentDocument(c))
	}
	return postDocument{
		ID:        oid,
		Title:     p.Title,
		Content:   p.Content,
		Author:    p.Author,
		Comments:  comments,
		CreatedAt: p.CreatedAt,
	}, nil
}

func (d postDocument) model() models.Post {
	comments := make([]models.Comment, 0, len(d.Comments))
	for _, c := range d.Comments {
		comments = append(comments, models.Comment(c))
	}
	return models.Post{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Content:   d.Content,
		Author:    d.Author,
		Comments:  comments,
		CreatedAt: d.CreatedAt,
	}
}
