// Package sqlstore is the MySQL backend built on GORM. A post row carries its
// comments as a JSON column, which keeps the one-document-per-post write
// semantics of the Mongo backend.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/aiblog/models"
	"github.com/cppla/aiblog/store"
)

// Store implements store.Store on a *gorm.DB.
type Store struct {
	db      *gorm.DB
	timeout time.Duration
}

var _ store.Store = (*Store)(nil)

// New wraps db and creates missing tables.
func New(db *gorm.DB, timeout time.Duration) (*Store, error) {
	s := &Store{db: db, timeout: timeout}
	for _, model := range []interface{}{&models.User{}, &models.Post{}} {
		// Only migrate when table not exists to avoid intrusive changes on existing schema
		if db.Migrator().HasTable(model) {
			continue
		}
		if err := db.AutoMigrate(model); err != nil {
			return nil, fmt.Errorf("auto migration failed for %T: %w", model, err)
		}
	}
	return s, nil
}

func (s *Store) conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if s.timeout <= 0 {
		ctx, cancel := context.WithCancel(ctx)
		return s.db.WithContext(ctx), cancel
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	db, cancel := s.conn(ctx)
	defer cancel()
	if err := db.Create(user).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.firstUser(ctx, "id = ?", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.firstUser(ctx, "email = ?", email)
}

func (s *Store) firstUser(ctx context.Context, query string, arg string) (*models.User, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	var user models.User
	if err := db.Where(query, arg).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	db, cancel := s.conn(ctx)
	defer cancel()
	if err := db.Create(post).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	var post models.Post
	if err := db.Where("id = ?", id).First(&post).Error; err != nil {
		return nil, translate(err)
	}
	normalize(&post)
	return &post, nil
}

func (s *Store) ListPosts(ctx context.Context, filter store.PostFilter) ([]models.Post, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	q := db.Model(&models.Post{})
	if filter.TitleContains != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+escapeLike(strings.ToLower(filter.TitleContains))+"%")
	}
	if filter.Author != "" {
		q = q.Where("author = ?", filter.Author)
	}
	return findPosts(q)
}

func (s *Store) ListPostsCommentedBy(ctx context.Context, author string) ([]models.Post, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	q := db.Model(&models.Post{}).Where("JSON_CONTAINS(comments, JSON_OBJECT('author', ?))", author)
	return findPosts(q)
}

func findPosts(q *gorm.DB) ([]models.Post, error) {
	posts := []models.Post{}
	if err := q.Order("created_at DESC, id DESC").Find(&posts).Error; err != nil {
		return nil, translate(err)
	}
	for i := range posts {
		normalize(&posts[i])
	}
	return posts, nil
}

func (s *Store) SavePost(ctx context.Context, post *models.Post) error {
	db, cancel := s.conn(ctx)
	defer cancel()
	return db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).Count(&n).Error; err != nil {
			return translate(err)
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return translate(tx.Save(post).Error)
	})
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	db, cancel := s.conn(ctx)
	defer cancel()
	res := db.Where("id = ?", id).Delete(&models.Post{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// translate maps GORM errors onto the store sentinels. Requires
// gorm.Config.TranslateError so duplicate keys surface as gorm.ErrDuplicatedKey.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrDuplicate
	default:
		return err
	}
}

func normalize(p *models.Post) {
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
