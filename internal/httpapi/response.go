package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cruzverde/attendance/internal/apperr"
	"github.com/cruzverde/attendance/internal/httpmiddleware"
)

type successBody struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, successBody{Success: true, Data: data})
}

func created(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, successBody{Success: true, Data: data, Message: message})
}

func okMessage(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, successBody{Success: true, Data: data, Message: message})
}

func okList(c *gin.Context, data any, count int) {
	c.JSON(http.StatusOK, successBody{Success: true, Data: data, Count: &count})
}

// writeError maps err to its status. Unclassified errors become a generic
// 500 whose cause is only exposed outside production.
func (h *Handler) writeError(c *gin.Context, err error) {
	if e, ok := apperr.As(err); ok && e.Kind != apperr.KindInternal {
		c.AbortWithStatusJSON(e.Kind.Status(), errorBody{Message: e.Message, Code: e.Code})
		return
	}

	h.logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.String("request_id", httpmiddleware.GetRequestID(c)),
		zap.Error(err),
	)
	_ = c.Error(err)
	body := errorBody{Message: "internal server error"}
	if !h.production {
		body.Error = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, body)
}
