// Package store defines the persistence contracts for users and posts.
// Backends live in subpackages and translate their driver errors into the
// sentinel errors declared here.
package store

import (
	"context"
	"errors"

	"github.com/cppla/aiblog/models"
)

var (
	// ErrNotFound reports that the requested document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate reports a unique constraint violation.
	ErrDuplicate = errors.New("duplicate key")
)

// PostFilter narrows ListPosts. Zero values match everything.
type PostFilter struct {
	// TitleContains is a case-insensitive literal substring.
	TitleContains string
	Author        string
}

// UserStore persists credentials. Username and email are unique.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// PostStore persists posts together with their nested comments.
type PostStore interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	// ListPosts returns matching posts, newest first.
	ListPosts(ctx context.Context, filter PostFilter) ([]models.Post, error)
	// ListPostsCommentedBy returns posts holding at least one comment by author.
	ListPostsCommentedBy(ctx context.Context, author string) ([]models.Post, error)
	// SavePost replaces the whole stored document, comments included.
	SavePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
}

// Store is a full backend with an explicit lifecycle.
type Store interface {
	UserStore
	PostStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
