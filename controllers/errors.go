package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/aiblog/services"
	"github.com/cppla/aiblog/utils"
)

// respondError maps a service failure to status, business code and message.
// Unclassified errors are logged and hidden behind a generic 500.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.Error(ctx, http.StatusBadRequest, 40002, err.Error())
	case errors.Is(err, services.ErrUnauthenticated):
		utils.Error(ctx, http.StatusUnauthorized, 40110, err.Error())
	case errors.Is(err, services.ErrWrongPassword):
		utils.Error(ctx, http.StatusUnauthorized, 40106, "wrong password")
	case errors.Is(err, services.ErrInvalidCredential):
		utils.Error(ctx, http.StatusForbidden, 40301, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40310, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, err.Error())
	default:
		utils.Sugar.Errorw("request failed",
			"method", ctx.Request.Method,
			"path", ctx.FullPath(),
			"error", err,
		)
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal server error")
	}
}

func badPayload(ctx *gin.Context) {
	utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
}
