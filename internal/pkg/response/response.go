package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErr "notehub/internal/pkg/errors"
)

// Error writes the flat {"message": ...} error shape the public NoteHub
// API uses, so the client exercises the exact wire contract it sees in
// production.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// HandleError maps domain sentinels onto HTTP statuses.
func HandleError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case appErr.IsUnauthorized(err):
		Error(c, http.StatusUnauthorized, "unauthorized")
	case appErr.IsNotFound(err):
		Error(c, http.StatusNotFound, "note not found")
	default:
		Error(c, http.StatusInternalServerError, "internal error")
	}
}
