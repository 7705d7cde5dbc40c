// Package memstore is an in-process Store used by tests and by
// STORE_DRIVER=memory for local development. Nothing survives a restart.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/cppla/aiblog/models"
	"github.com/cppla/aiblog/store"
)

// Store keeps users and posts in maps guarded by a single RWMutex.
type Store struct {
	mu    sync.RWMutex
	users map[string]models.User
	posts map[string]models.Post
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users: map[string]models.User{},
		posts: map[string]models.Post{},
	}
}

var _ store.Store = (*Store)(nil)

func (s *Store) Ping(ctx context.Context) error  { return nil }
func (s *Store) Close(ctx context.Context) error { return nil }

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return store.ErrDuplicate
	}
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[post.ID]; ok {
		return store.ErrDuplicate
	}
	s.posts[post.ID] = post.Clone()
	return nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := p.Clone()
	return &out, nil
}

func (s *Store) ListPosts(ctx context.Context, filter store.PostFilter) ([]models.Post, error) {
	needle := strings.ToLower(filter.TitleContains)
	return s.collect(func(p *models.Post) bool {
		if filter.Author != "" && p.Author != filter.Author {
			return false
		}
		return needle == "" || strings.Contains(strings.ToLower(p.Title), needle)
	}), nil
}

func (s *Store) ListPostsCommentedBy(ctx context.Context, author string) ([]models.Post, error) {
	return s.collect(func(p *models.Post) bool {
		for _, c := range p.Comments {
			if c.Author == author {
				return true
			}
		}
		return false
	}), nil
}

func (s *Store) SavePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[post.ID]; !ok {
		return store.ErrNotFound
	}
	s.posts[post.ID] = post.Clone()
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *Store) collect(match func(*models.Post) bool) []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Post{}
	for _, p := range s.posts {
		if match(&p) {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
