package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/aiblog/models"
	"github.com/cppla/aiblog/store/memstore"
)

var (
	alice = &Identity{UserID: "u1", Username: "alice"}
	bob   = &Identity{UserID: "u2", Username: "bob"}
)

func newPostService(t *testing.T) *PostService {
	t.Helper()
	svc := NewPostService(memstore.New())
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc
}

func strPtr(s string) *string { return &s }

func TestCreatePostRequiresIdentity(t *testing.T) {
	svc := newPostService(t)

	_, err := svc.CreatePost(context.Background(), nil, "T", "C")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.CreatePost(context.Background(), &Identity{}, "T", "C")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCreatePostSetsAuthor(t *testing.T) {
	svc := newPostService(t)

	post, err := svc.CreatePost(context.Background(), alice, "T", "C")
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "T", post.Title)
	assert.Equal(t, "C", post.Content)
	assert.Equal(t, "u1", post.Author)
	assert.NotNil(t, post.Comments)
	assert.Empty(t, post.Comments)
	assert.False(t, post.CreatedAt.IsZero())

	got, err := svc.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, post, got)
}

func TestCreatePostValidation(t *testing.T) {
	svc := newPostService(t)

	_, err := svc.CreatePost(context.Background(), alice, "   ", "C")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreatePost(context.Background(), alice, "T", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreatePostSanitizesMarkup(t *testing.T) {
	svc := newPostService(t)

	post, err := svc.CreatePost(context.Background(), alice, "<b>Hello</b>", `hi<script>alert(1)</script>`)
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "hi", post.Content)
}

func TestGetPostNotFound(t *testing.T) {
	svc := newPostService(t)

	_, err := svc.GetPost(context.Background(), models.NewID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPostsFilters(t *testing.T) {
	svc := newPostService(t)
	ctx := context.Background()

	first, err := svc.CreatePost(ctx, alice, "Learning Go", "a")
	require.NoError(t, err)
	second, err := svc.CreatePost(ctx, bob, "GOLANG tips", "b")
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, alice, "Rust notes", "c")
	require.NoError(t, err)

	all, err := svc.ListPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byTitle, err := svc.ListPostsByTitle(ctx, "go")
	require.NoError(t, err)
	require.Len(t, byTitle, 2)
	assert.Equal(t, second.ID, byTitle[0].ID, "newest first")
	assert.Equal(t, first.ID, byTitle[1].ID)

	literal, err := svc.ListPostsByTitle(ctx, ".*")
	require.NoError(t, err)
	assert.Empty(t, literal)

	byAuthor, err := svc.ListPostsByAuthor(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, second.ID, byAuthor[0].ID)

	none, err := svc.ListPostsByAuthor(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUpdatePostOwnership(t *testing.T) {
	svc := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, alice, "T", "C")
	require.NoError(t, err)

	_, err = svc.UpdatePost(ctx, bob, post.ID, PostPatch{Title: strPtr("hijacked")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.UpdatePost(ctx, nil, post.ID, PostPatch{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.UpdatePost(ctx, alice, models.NewID(), PostPatch{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	unchanged, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "T", unchanged.Title)
}

func TestUpdatePostPartial(t *testing.T) {
	svc := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, alice, "T", "C")
	require.NoError(t, err)

	updated, err := svc.UpdatePost(ctx, alice, post.ID, PostPatch{Title: strPtr("New title")})
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, "C", updated.Content)

	updated, err = svc.UpdatePost(ctx, alice, post.ID, PostPatch{Content: strPtr("New content")})
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, "New content", updated.Content)

	reread, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "New title", reread.Title)
	assert.Equal(t, "New content", reread.Content)
	assert.Equal(t, "u1", reread.Author)
}

func TestUpdatePostRejectsEmptyField(t *testing.T) {
	svc := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, alice, "T", "C")
	require.NoError(t, err)

	_, err = svc.UpdatePost(ctx, alice, post.ID, PostPatch{Title: strPtr("")})
	assert.ErrorIs(t, err, ErrValidation)

	reread, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "T", reread.Title)
}

func TestDeletePost(t *testing.T) {
	svc := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, alice, "T", "C")
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, bob, post.ID, "nice")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeletePost(ctx, bob, post.ID), ErrForbidden)
	assert.ErrorIs(t, svc.DeletePost(ctx, nil, post.ID), ErrUnauthenticated)

	require.NoError(t, svc.DeletePost(ctx, alice, post.ID))

	_, err = svc.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeletePost(ctx, alice, post.ID), ErrNotFound)

	comments, err := svc.ListCommentsByAuthor(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, comments, "comments go away with their post")
}

func TestAddComment(t *testing.T) {
	svc := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, alice, "T", "C")
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, nil, post.ID, "hi")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.AddComment(ctx, bob, models.NewID(), "hi")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddComment(ctx, bob, post.ID, " ")
	assert.ErrorIs(t, err, ErrValidation)

	c1, err := svc.AddComment(ctx, bob, post.ID, "first")
	require.NoError(t, err)
	c2, err := svc.AddComment(ctx, alice, post.ID, "second")
	require.NoError(t, err)

	assert.NotEqual(t, c1.CommentID, c2.CommentID)
	assert.Equal(t, "u2", c1.Author)

	reread, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, reread.Comments, 2)
	assert.Equal(t, "first", reread.Comments[0].Content)
	assert.Equal(t, "second", reread.Comments[1].Content)
}

func TestUpdateCommentOwnership(t *testing.T) {
	svc := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, alice, "T", "C")
	require.NoError(t, err)
	comment, err := svc.AddComment(ctx, bob, post.ID, "original")
	require.NoError(t, err)

	// the post author has no say over bob's comment
	_, err = svc.UpdateComment(ctx, alice, post.ID, comment.CommentID, strPtr("edited by alice"))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.UpdateComment(ctx, bob, post.ID, "missing", strPtr("x"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateComment(ctx, bob, models.NewID(), comment.CommentID, strPtr("x"))
	assert.ErrorIs(t, err, ErrNotFound)

	kept, err := svc.UpdateComment(ctx, bob, post.ID, comment.CommentID, nil)
	require.NoError(t, err)
	assert.Equal(t, "original", kept.Content)

	updated, err := svc.UpdateComment(ctx, bob, post.ID, comment.CommentID, strPtr("edited"))
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.Equal(t, comment.CommentID, updated.CommentID)

	reread, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", reread.Comments[0].Content)
}

func TestDeleteCommentOwnership(t *testing.T) {
	svc := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, bob, "T", "C")
	require.NoError(t, err)
	before, err := svc.AddComment(ctx, bob, post.ID, "before")
	require.NoError(t, err)
	target, err := svc.AddComment(ctx, alice, post.ID, "by alice")
	require.NoError(t, err)
	after, err := svc.AddComment(ctx, bob, post.ID, "after")
	require.NoError(t, err)

	// bob owns the post but not alice's comment
	assert.ErrorIs(t, svc.DeleteComment(ctx, bob, post.ID, target.CommentID), ErrForbidden)
	assert.ErrorIs(t, svc.DeleteComment(ctx, nil, post.ID, target.CommentID), ErrUnauthenticated)

	require.NoError(t, svc.DeleteComment(ctx, alice, post.ID, target.CommentID))

	reread, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, reread.Comments, 2)
	assert.Equal(t, before.CommentID, reread.Comments[0].CommentID)
	assert.Equal(t, after.CommentID, reread.Comments[1].CommentID)

	assert.ErrorIs(t, svc.DeleteComment(ctx, alice, post.ID, target.CommentID), ErrNotFound)
}

func TestListCommentsByAuthor(t *testing.T) {
	svc := newPostService(t)
	ctx := context.Background()

	none, err := svc.ListCommentsByAuthor(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	p1, err := svc.CreatePost(ctx, alice, "one", "c")
	require.NoError(t, err)
	p2, err := svc.CreatePost(ctx, alice, "two", "c")
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, bob, p1.ID, "bob on one")
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, alice, p1.ID, "alice on one")
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, bob, p2.ID, "bob on two")
	require.NoError(t, err)

	comments, err := svc.ListCommentsByAuthor(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	for _, c := range comments {
		assert.Equal(t, "u2", c.Author)
	}

	none, err = svc.ListCommentsByAuthor(ctx, "u3")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPunctuationRoundTrips(t *testing.T) {
	svc := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, alice, "Tom's Q&A", "a < b && c > d")
	require.NoError(t, err)

	got, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tom's Q&A", got.Title)
	assert.Equal(t, "a < b && c > d", got.Content)

	hits, err := svc.ListPostsByTitle(ctx, "Tom's")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, post.ID, hits[0].ID)

	_, err = svc.UpdatePost(ctx, alice, post.ID, PostPatch{
		Title:   strPtr(`"Quotes" & <stuff>`),
		Content: strPtr("it's 3 < 4 & 5 > 2"),
	})
	require.NoError(t, err)
	got, err = svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, `"Quotes" &`, got.Title, "tags are not text")
	assert.Equal(t, "it's 3 < 4 & 5 > 2", got.Content)

	comment, err := svc.AddComment(ctx, bob, post.ID, "Bob's take: x < y & y < z")
	require.NoError(t, err)
	got, err = svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob's take: x < y & y < z", got.Comments[got.FindComment(comment.CommentID)].Content)
}
