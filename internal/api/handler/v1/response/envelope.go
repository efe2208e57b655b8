package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the body returned to XMLHttpRequest callers of the action endpoint.
type Envelope struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func RenderOK(ctx *gin.Context, message string, data any) {
	if data == nil {
		data = gin.H{}
	}

	ctx.JSON(http.StatusOK, Envelope{OK: true, Message: message, Data: data})
}

// RenderFail answers with ok=false, keeping the status code of err.
func RenderFail(ctx *gin.Context, err *Err) {
	logServerErr(ctx, err)

	ctx.AbortWithStatusJSON(err.HTTPStatusCode, Envelope{OK: false, Message: err.ErrorMsg, Data: gin.H{}})
}
