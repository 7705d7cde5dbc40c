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

// CommentController manages comments nested inside posts.
type CommentController struct {
	posts *services.PostService
}

// NewCommentController creates a CommentController.
func NewCommentController(posts *services.PostService) *CommentController {
	return &CommentController{posts: posts}
}

// AddComment allows authenticated users to comment on posts.
func (c *CommentController) AddComment(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badPayload(ctx)
		return
	}

	comment, err := c.posts.AddComment(ctx.Request.Context(), middleware.CurrentIdentity(ctx), ctx.Param("postId"), req.Content)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, comment)
}

// UpdateComment lets the comment author change its content.
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	var req struct {
		Content *string `json:"content"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badPayload(ctx)
		return
	}

	comment, err := c.posts.UpdateComment(ctx.Request.Context(), middleware.CurrentIdentity(ctx),
		ctx.Param("postId"), ctx.Param("commentId"), req.Content)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, comment)
}

// DeleteComment lets the comment author remove it.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	err := c.posts.DeleteComment(ctx.Request.Context(), middleware.CurrentIdentity(ctx),
		ctx.Param("postId"), ctx.Param("commentId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Respond(ctx, http.StatusOK, 0, "comment deleted", nil)
}

// ListCommentsByAuthor returns every comment by an author; possibly empty.
func (c *CommentController) ListCommentsByAuthor(ctx *gin.Context) {
	comments, err := c.posts.ListCommentsByAuthor(ctx.Request.Context(), ctx.Param("author"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, comments)
}
