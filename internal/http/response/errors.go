package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/artspace-backend/internal/platform/apierr"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

// RespondAPIError maps err through apierr. Server-side failures are logged
// with the full chain; the client gets the message and code.
func RespondAPIError(c *gin.Context, log *logger.Logger, err error) {
	status := apierr.Status(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("Request failed", "path", c.FullPath(), "status", status, "error", err)
	}
	RespondError(c, status, apierr.Code(err), err)
}
