package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cppla/aiblog/config"
	"github.com/cppla/aiblog/controllers"
	"github.com/cppla/aiblog/middleware"
	"github.com/cppla/aiblog/services"
	"github.com/cppla/aiblog/store"
	"github.com/cppla/aiblog/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, st store.Store, blacklist *utils.TokenBlacklist) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access log goes to its own rolling file; fall back to the app logger
	accessLog := utils.Logger
	if cfg.GinPath != "" {
		if gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress); err == nil {
			accessLog = gl
		} else {
			utils.Sugar.Warnf("gin access log disabled: %v", err)
		}
	}
	r.Use(middleware.Ginzap(accessLog, time.RFC3339, true))
	r.Use(middleware.RecoveryWithZap(accessLog, true))

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		if err := st.Ping(ctx.Request.Context()); err != nil {
			utils.Error(ctx, http.StatusServiceUnavailable, 50300, "store unavailable")
			return
		}
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL())
	authService := services.NewAuthService(st, tokens, blacklist)
	postService := services.NewPostService(st)

	authController := controllers.NewAuthController(authService)
	postController := controllers.NewPostController(postService)
	commentController := controllers.NewCommentController(postService)
	authRequired := middleware.AuthRequired(authService)

	authGroup := r.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute))
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/user/:id", authController.GetUser)
	authGroup.POST("/logout", authRequired, authController.Logout)
	authGroup.GET("/me", authRequired, authController.Me)

	api := r.Group("/api")
	api.GET("/posts", postController.ListPosts)
	api.GET("/posts/:postId", postController.GetPost)
	api.GET("/posts/title/:title", postController.ListPostsByTitle)
	api.GET("/posts/author/:author", postController.ListPostsByAuthor)
	api.GET("/comments/author/:author", commentController.ListCommentsByAuthor)

	protected := api.Group("")
	protected.Use(authRequired)
	protected.POST("/posts", postController.CreatePost)
	protected.PUT("/posts/:postId", postController.UpdatePost)
	protected.DELETE("/posts/:postId", postController.DeletePost)
	protected.POST("/posts/:postId/comments", commentController.AddComment)
	protected.PUT("/posts/:postId/comments/:commentId", commentController.UpdateComment)
	protected.DELETE("/posts/:postId/comments/:commentId", commentController.DeleteComment)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
