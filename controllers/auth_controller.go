package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/aiblog/middleware"
	"github.com/cppla/aiblog/services"
	"github.com/cppla/aiblog/utils"
)

// AuthController handles registration, login and user lookup.
type AuthController struct {
	auth *services.AuthService
}

// NewAuthController creates an AuthController.
func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Register handles local account registration with bcrypt hashing.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badPayload(ctx)
		return
	}

	user, err := a.auth.Register(ctx.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Sugar.Infow("user registered", "user_id", user.ID, "username", user.Username)
	utils.Respond(ctx, http.StatusCreated, 0, "user registered", gin.H{"userId": user.ID})
}

// Login verifies credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badPayload(ctx)
		return
	}

	res, err := a.auth.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, res)
}

// GetUser returns the public projection of a user.
func (a *AuthController) GetUser(ctx *gin.Context) {
	user, err := a.auth.GetUser(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, user.Public())
}

// Me echoes the identity carried by the caller's token.
func (a *AuthController) Me(ctx *gin.Context) {
	utils.Success(ctx, middleware.CurrentIdentity(ctx))
}

// Logout revokes the caller's token until it expires.
func (a *AuthController) Logout(ctx *gin.Context) {
	if err := a.auth.Logout(ctx.Request.Context(), middleware.CurrentToken(ctx)); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}
