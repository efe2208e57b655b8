package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/laconfrerie/confrerie-api/internal/domain"
)

// StatusSessionExpired is sent when the anti-forgery token does not match the session.
const StatusSessionExpired = 419

type Err struct {
	Err            error  `json:"-"`
	HTTPStatusCode int    `json:"-"`
	StatusText     string `json:"status_text"`
	ErrorMsg       string `json:"error_msg,omitempty"`
}

func (e *Err) Error() string {
	if e.Err == nil {
		return e.StatusText
	}

	return e.Err.Error()
}

func RenderErr(ctx *gin.Context, err *Err) {
	logServerErr(ctx, err)

	ctx.AbortWithStatusJSON(err.HTTPStatusCode, err)
}

func logServerErr(ctx *gin.Context, err *Err) {
	if err.HTTPStatusCode < http.StatusInternalServerError {
		return
	}

	zap.L().Error("request failed",
		zap.String("path", ctx.Request.URL.Path),
		zap.String("request_id", ctx.Writer.Header().Get("X-Request-ID")),
		zap.Int("status", err.HTTPStatusCode),
		zap.Error(err.Err),
	)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Bad request.",
		ErrorMsg:       message(err),
	}
}

func ErrNotFound(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     "Resource not found.",
		ErrorMsg:       message(err),
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusForbidden,
		StatusText:     "Permission denied.",
		ErrorMsg:       message(err),
	}
}

func ErrTooManyRequests(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusTooManyRequests,
		StatusText:     "Too many requests.",
		ErrorMsg:       message(err),
	}
}

func ErrCSRF() *Err {
	return &Err{
		Err:            errors.New("csrf token mismatch"),
		HTTPStatusCode: StatusSessionExpired,
		StatusText:     "Session expired.",
		ErrorMsg:       "Session expirée, recharge la page.",
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal server error.",
		ErrorMsg:       "Erreur serveur, reessaie plus tard.",
	}
}

// FromError maps a service error onto its HTTP rendering.
func FromError(err error) *Err {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return ErrBadRequest(err)
	case errors.Is(err, domain.ErrNotFound):
		return ErrNotFound(err)
	case errors.Is(err, domain.ErrPermission):
		return ErrPermissionDenied(err)
	case errors.Is(err, domain.ErrRateLimited):
		return ErrTooManyRequests(err)
	default:
		return ErrInternalServerError(err)
	}
}

func message(err error) string {
	if msg, ok := domain.UserMessage(err); ok {
		return msg
	}
	if err == nil {
		return ""
	}

	return err.Error()
}
