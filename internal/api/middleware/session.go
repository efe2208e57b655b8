package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/laconfrerie/confrerie-api/internal/api/handler/v1/response"
	"github.com/laconfrerie/confrerie-api/internal/domain"
	"github.com/laconfrerie/confrerie-api/internal/pkg/jwthelper"
	"github.com/laconfrerie/confrerie-api/internal/session"
)

const (
	SessionCookie  = "confrerie_session"
	RememberCookie = "confrerie_remember"

	sessionIDKey = "confrerie.session_id"
)

type UserGetter interface {
	GetUser(ctx context.Context, id string) (domain.User, error)
}

// Sessions binds every request to a server-side session and keeps the login cookie in sync with it.
type Sessions struct {
	store       *session.Store
	users       UserGetter
	signingKey  []byte
	rememberTTL time.Duration
	secure      bool
}

func NewSessions(store *session.Store, users UserGetter, signingKey string, rememberTTL time.Duration, secure bool) *Sessions {
	return &Sessions{
		store:       store,
		users:       users,
		signingKey:  []byte(signingKey),
		rememberTTL: rememberTTL,
		secure:      secure,
	}
}

func (s *Sessions) Handle() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		cookieID, _ := ctx.Cookie(SessionCookie)
		sess := s.store.Get(cookieID)
		if sess.ID != cookieID {
			s.setCookie(ctx, SessionCookie, sess.ID, 0)
		}

		if sess.UserID == "" {
			s.restore(ctx, sess.ID)
		} else if !s.userExists(ctx, sess.UserID) {
			s.store.Update(sess.ID, func(sess *session.Session) { sess.Reset() })
			s.ClearRemember(ctx)
		}

		ctx.Set(sessionIDKey, sess.ID)
		ctx.Next()
	}
}

// restore logs the session in from a valid remember cookie.
func (s *Sessions) restore(ctx *gin.Context, sessionID string) {
	token, err := ctx.Cookie(RememberCookie)
	if err != nil || token == "" {
		return
	}

	userID, err := jwthelper.ParseToken(s.signingKey, token)
	if err != nil || !s.userExists(ctx, userID) {
		s.ClearRemember(ctx)
		return
	}

	s.store.Update(sessionID, func(sess *session.Session) { sess.UserID = userID })
}

func (s *Sessions) userExists(ctx *gin.Context, userID string) bool {
	_, err := s.users.GetUser(ctx.Request.Context(), userID)
	if err == nil {
		return true
	}
	if !errors.Is(err, domain.ErrNotFound) {
		zap.L().Error("session user lookup failed", zap.String("user_id", userID), zap.Error(err))
		// Keep the login on storage errors.
		return true
	}

	return false
}

func (s *Sessions) Remember(ctx *gin.Context, userID string) error {
	token, err := jwthelper.GenerateToken(s.signingKey, userID, s.rememberTTL)
	if err != nil {
		return err
	}

	s.setCookie(ctx, RememberCookie, token, int(s.rememberTTL/time.Second))

	return nil
}

func (s *Sessions) ClearRemember(ctx *gin.Context) {
	s.setCookie(ctx, RememberCookie, "", -1)
}

func (s *Sessions) setCookie(ctx *gin.Context, name, value string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(name, value, maxAge, "/", "", s.secure, true)
}

// RequireCSRF rejects form posts whose csrf field does not match the session token.
func (s *Sessions) RequireCSRF() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		sess := s.store.Get(SessionID(ctx))
		token := ctx.PostForm("csrf")

		if token == "" || sess.CSRF == "" || subtle.ConstantTimeCompare([]byte(token), []byte(sess.CSRF)) != 1 {
			errCSRF := response.ErrCSRF()
			if IsAJAX(ctx) {
				response.RenderFail(ctx, errCSRF)
				return
			}
			ctx.String(errCSRF.HTTPStatusCode, errCSRF.ErrorMsg)
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}

func SessionID(ctx *gin.Context) string {
	return ctx.GetString(sessionIDKey)
}

func IsAJAX(ctx *gin.Context) bool {
	return strings.EqualFold(ctx.GetHeader("X-Requested-With"), "XMLHttpRequest")
}
