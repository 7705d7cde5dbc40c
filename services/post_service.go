package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cppla/aiblog/models"
	"github.com/cppla/aiblog/store"
	"github.com/cppla/aiblog/utils"
)

// PostPatch carries a partial post update. A nil field keeps the stored value.
type PostPatch struct {
	Title   *string
	Content *string
}

// PostService applies post and comment operations on behalf of an identity.
//
// Post mutations are checked against the post's author; comment mutations are
// checked against the comment's author only, so a post author has no rights
// over other users' comments on their post. Writes replace the whole post
// document and are last-write-wins.
type PostService struct {
	posts        store.PostStore
	now          func() time.Time
	newCommentID func() string
}

// NewPostService returns a PostService writing through posts.
func NewPostService(posts store.PostStore) *PostService {
	return &PostService{
		posts:        posts,
		now:          func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newCommentID: uuid.NewString,
	}
}

// CreatePost stores a new post authored by id.
func (s *PostService) CreatePost(ctx context.Context, id *Identity, title, content string) (*models.Post, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	content, err = cleanContent(content)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:        models.NewID(),
		Title:     title,
		Content:   content,
		Author:    id.UserID,
		Comments:  []models.Comment{},
		CreatedAt: s.now(),
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// GetPost returns a single post with its comments.
func (s *PostService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	return s.loadPost(ctx, postID)
}

// ListPosts returns every post, newest first.
func (s *PostService) ListPosts(ctx context.Context) ([]models.Post, error) {
	return s.list(ctx, store.PostFilter{})
}

// ListPostsByTitle matches title as a case-insensitive literal substring.
func (s *PostService) ListPostsByTitle(ctx context.Context, title string) ([]models.Post, error) {
	return s.list(ctx, store.PostFilter{TitleContains: title})
}

// ListPostsByAuthor returns the posts written by authorID.
func (s *PostService) ListPostsByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	return s.list(ctx, store.PostFilter{Author: authorID})
}

func (s *PostService) list(ctx context.Context, filter store.PostFilter) ([]models.Post, error) {
	posts, err := s.posts.ListPosts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

// UpdatePost applies patch to a post owned by id.
func (s *PostService) UpdatePost(ctx context.Context, id *Identity, postID string, patch PostPatch) (*models.Post, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !id.owns(post.Author) {
		return nil, forbidden("update this post")
	}

	if patch.Title != nil {
		if post.Title, err = cleanTitle(*patch.Title); err != nil {
			return nil, err
		}
	}
	if patch.Content != nil {
		if post.Content, err = cleanContent(*patch.Content); err != nil {
			return nil, err
		}
	}
	if err := s.save(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post owned by id together with all of its comments.
func (s *PostService) DeletePost(ctx context.Context, id *Identity, postID string) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return err
	}
	if !id.owns(post.Author) {
		return forbidden("delete this post")
	}
	if err := s.posts.DeletePost(ctx, post.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("post")
		}
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// AddComment appends a comment by id to the post.
func (s *PostService) AddComment(ctx context.Context, id *Identity, postID, content string) (*models.Comment, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	content, err = cleanContent(content)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		CommentID: s.newCommentID(),
		Author:    id.UserID,
		Content:   content,
		CreatedAt: s.now(),
	}
	post.Comments = append(post.Comments, comment)
	if err := s.save(ctx, post); err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateComment replaces the content of a comment owned by id. A nil content
// leaves the comment unchanged.
func (s *PostService) UpdateComment(ctx context.Context, id *Identity, postID, commentID string, content *string) (*models.Comment, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	post, idx, err := s.loadComment(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	comment := &post.Comments[idx]
	if !id.owns(comment.Author) {
		return nil, forbidden("update this comment")
	}

	if content != nil {
		if comment.Content, err = cleanContent(*content); err != nil {
			return nil, err
		}
	}
	if err := s.save(ctx, post); err != nil {
		return nil, err
	}
	out := *comment
	return &out, nil
}

// DeleteComment splices a comment owned by id out of its post.
func (s *PostService) DeleteComment(ctx context.Context, id *Identity, postID, commentID string) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	post, idx, err := s.loadComment(ctx, postID, commentID)
	if err != nil {
		return err
	}
	if !id.owns(post.Comments[idx].Author) {
		return forbidden("delete this comment")
	}

	post.Comments = append(post.Comments[:idx], post.Comments[idx+1:]...)
	return s.save(ctx, post)
}

// ListCommentsByAuthor collects every comment written by authorID across all
// posts. No match yields an empty slice.
func (s *PostService) ListCommentsByAuthor(ctx context.Context, authorID string) ([]models.Comment, error) {
	posts, err := s.posts.ListPostsCommentedBy(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	comments := []models.Comment{}
	for _, p := range posts {
		for _, c := range p.Comments {
			if c.Author == authorID {
				comments = append(comments, c)
			}
		}
	}
	return comments, nil
}

func (s *PostService) loadPost(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("post")
		}
		return nil, fmt.Errorf("load post: %w", err)
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	return post, nil
}

func (s *PostService) loadComment(ctx context.Context, postID, commentID string) (*models.Post, int, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, -1, err
	}
	idx := post.FindComment(commentID)
	if idx < 0 {
		return nil, -1, notFound("comment")
	}
	return post, idx, nil
}

func (s *PostService) save(ctx context.Context, post *models.Post) error {
	if err := s.posts.SavePost(ctx, post); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("post")
		}
		return fmt.Errorf("save post: %w", err)
	}
	return nil
}

func cleanTitle(title string) (string, error) {
	title = utils.SanitizeTitle(title)
	if title == "" {
		return "", invalid("title cannot be empty")
	}
	return title, nil
}

func cleanContent(content string) (string, error) {
	content = utils.Sanitize(content)
	if strings.TrimSpace(content) == "" {
		return "", invalid("content cannot be empty")
	}
	return content, nil
}

