package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/aiblog/models"
	"github.com/cppla/aiblog/store"
)

var errNoDatabase = errors.New("dry run: no database")

// nullPool satisfies gorm.ConnPool without a server. In DryRun mode gorm
// never calls the query methods; BeginTx hands out a committable nullTx.
type nullPool struct{}

func (nullPool) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return nil, errNoDatabase
}
func (nullPool) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, errNoDatabase
}
func (nullPool) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, errNoDatabase
}
func (nullPool) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}
func (nullPool) BeginTx(ctx context.Context, opts *sql.TxOptions) (gorm.ConnPool, error) {
	return &nullTx{}, nil
}

type nullTx struct {
	nullPool
	committed bool
}

func (t *nullTx) Commit() error   { t.committed = true; return nil }
func (t *nullTx) Rollback() error { return nil }

type statement struct {
	SQL  string
	Vars []interface{}
}

// recorder captures every statement gorm builds. count is reported back to
// Count queries so both SavePost branches can be driven.
type recorder struct {
	statements []statement
	count      int64
}

func (r *recorder) record(tx *gorm.DB) {
	r.statements = append(r.statements, statement{
		SQL:  tx.Statement.SQL.String(),
		Vars: append([]interface{}(nil), tx.Statement.Vars...),
	})
	if n, ok := tx.Statement.Dest.(*int64); ok {
		*n = r.count
		tx.RowsAffected = 1
	}
}

func newDryRunStore(t *testing.T) (*Store, *recorder) {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      nullPool{},
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:         true,
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)

	rec := &recorder{}
	cb := db.Callback()
	require.NoError(t, cb.Query().After("gorm:query").Register("test:record_query", rec.record))
	require.NoError(t, cb.Update().After("gorm:update").Register("test:record_update", rec.record))
	require.NoError(t, cb.Delete().After("gorm:delete").Register("test:record_delete", rec.record))
	return &Store{db: db, timeout: time.Second}, rec
}

func (r *recorder) only(t *testing.T) statement {
	t.Helper()
	require.Len(t, r.statements, 1)
	return r.statements[0]
}

func TestListPostsStatement(t *testing.T) {
	s, rec := newDryRunStore(t)

	_, err := s.ListPosts(context.Background(), store.PostFilter{TitleContains: "Tom's 100%", Author: "u1"})
	require.NoError(t, err)

	st := rec.only(t)
	assert.Contains(t, st.SQL, "FROM `posts`")
	assert.Contains(t, st.SQL, "LOWER(title) LIKE ?")
	assert.Contains(t, st.SQL, "author = ?")
	assert.Contains(t, st.SQL, "ORDER BY created_at DESC, id DESC")
	assert.Equal(t, []interface{}{`%tom's 100\%%`, "u1"}, st.Vars)
}

func TestListPostsUnfilteredStatement(t *testing.T) {
	s, rec := newDryRunStore(t)

	posts, err := s.ListPosts(context.Background(), store.PostFilter{})
	require.NoError(t, err)
	assert.NotNil(t, posts)

	st := rec.only(t)
	assert.NotContains(t, st.SQL, "WHERE")
	assert.Contains(t, st.SQL, "ORDER BY created_at DESC, id DESC")
	assert.Empty(t, st.Vars)
}

func TestListPostsCommentedByStatement(t *testing.T) {
	s, rec := newDryRunStore(t)

	_, err := s.ListPostsCommentedBy(context.Background(), "u2")
	require.NoError(t, err)

	st := rec.only(t)
	assert.Contains(t, st.SQL, "FROM `posts`")
	assert.Contains(t, st.SQL, "JSON_CONTAINS(comments, JSON_OBJECT('author', ?))")
	assert.Contains(t, st.SQL, "ORDER BY created_at DESC, id DESC")
	assert.Equal(t, []interface{}{"u2"}, st.Vars)
}

func TestSavePostStatements(t *testing.T) {
	s, rec := newDryRunStore(t)
	rec.count = 1
	post := &models.Post{
		ID:        models.NewID(),
		Title:     "T",
		Content:   "C",
		Author:    "u1",
		Comments:  []models.Comment{{CommentID: "c1", Author: "u2", Content: "hi"}},
		CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, s.SavePost(context.Background(), post))

	require.Len(t, rec.statements, 2)
	count, update := rec.statements[0], rec.statements[1]
	assert.Contains(t, count.SQL, "SELECT count(*) FROM `posts`")
	assert.Contains(t, count.SQL, "id = ?")
	assert.Equal(t, []interface{}{post.ID}, count.Vars)

	assert.Contains(t, update.SQL, "UPDATE `posts` SET")
	assert.Contains(t, update.SQL, "`comments`=?")
	assert.Contains(t, update.SQL, "WHERE `id` = ?")
	require.NotEmpty(t, update.Vars)
	assert.Equal(t, post.ID, update.Vars[len(update.Vars)-1])
}

func TestSavePostMissingSkipsUpdate(t *testing.T) {
	s, rec := newDryRunStore(t)
	rec.count = 0

	err := s.SavePost(context.Background(), &models.Post{ID: models.NewID()})
	assert.ErrorIs(t, err, store.ErrNotFound)

	st := rec.only(t)
	assert.Contains(t, st.SQL, "SELECT count(*)")
}

func TestDeletePostStatement(t *testing.T) {
	s, rec := newDryRunStore(t)

	// nothing is affected in a dry run, so the missing-row branch answers
	err := s.DeletePost(context.Background(), "p1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	st := rec.only(t)
	assert.Contains(t, st.SQL, "DELETE FROM `posts`")
	assert.Contains(t, st.SQL, "id = ?")
	assert.Equal(t, []interface{}{"p1"}, st.Vars)
}
