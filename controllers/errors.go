package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bioloop-api/services"
	"bioloop-api/utils"
)

// respondError maps the service error taxonomy onto HTTP statuses. Storage
// failures turn into a generic 500 so internal paths never leak.
func respondError(c *gin.Context, err error) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		utils.SendValidationError(c, ve.Message)
		return
	}

	if services.IsAuthorization(err) {
		utils.SendError(c, http.StatusForbidden, "You do not have permission to modify this post")
		return
	}

	if services.IsNotFound(err) {
		utils.SendError(c, http.StatusNotFound, "Post not found")
		return
	}

	utils.SendError(c, http.StatusInternalServerError, "Internal server error")
}
