package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/aiblog/middleware"
	"github.com/cppla/aiblog/services"
	"github.com/cppla/aiblog/utils"
)

// PostController exposes the post half of the CRUD engine.
type PostController struct {
	posts *services.PostService
}

// NewPostController creates a new PostController instance.
func NewPostController(posts *services.PostService) *PostController {
	return &PostController{posts: posts}
}

// CreatePost allows authenticated users to create new posts.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Title   string `json:"title" binding:"required"`
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badPayload(ctx)
		return
	}

	post, err := p.posts.CreatePost(ctx.Request.Context(), middleware.CurrentIdentity(ctx), req.Title, req.Content)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, post)
}

// ListPosts returns every post.
func (p *PostController) ListPosts(ctx *gin.Context) {
	posts, err := p.posts.ListPosts(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, posts)
}

// GetPost returns a single post with comments.
func (p *PostController) GetPost(ctx *gin.Context) {
	post, err := p.posts.GetPost(ctx.Request.Context(), ctx.Param("postId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, post)
}

// ListPostsByTitle searches titles case-insensitively.
func (p *PostController) ListPostsByTitle(ctx *gin.Context) {
	posts, err := p.posts.ListPostsByTitle(ctx.Request.Context(), ctx.Param("title"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, posts)
}

// ListPostsByAuthor returns posts written by a user (public).
func (p *PostController) ListPostsByAuthor(ctx *gin.Context) {
	posts, err := p.posts.ListPostsByAuthor(ctx.Request.Context(), ctx.Param("author"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, posts)
}

// UpdatePost allows the author to update their post. Omitted fields keep
// their stored value.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	var req struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badPayload(ctx)
		return
	}

	post, err := p.posts.UpdatePost(ctx.Request.Context(), middleware.CurrentIdentity(ctx), ctx.Param("postId"),
		services.PostPatch{Title: req.Title, Content: req.Content})
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, post)
}

// DeletePost allows the author to delete their post.
func (p *PostController) DeletePost(ctx *gin.Context) {
	if err := p.posts.DeletePost(ctx.Request.Context(), middleware.CurrentIdentity(ctx), ctx.Param("postId")); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Respond(ctx, http.StatusOK, 0, "post deleted", nil)
}
