package v1

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/laconfrerie/confrerie-api/internal/api/handler/v1/response"
	"github.com/laconfrerie/confrerie-api/internal/api/middleware"
	"github.com/laconfrerie/confrerie-api/internal/domain"
	"github.com/laconfrerie/confrerie-api/internal/service"
	"github.com/laconfrerie/confrerie-api/internal/session"
	"github.com/laconfrerie/confrerie-api/internal/upload"
)

type AuthService interface {
	Login(ctx context.Context, userID, password string) (domain.User, error)
	SetPassword(ctx context.Context, actor domain.Actor, password string) error
	ToggleAdminMode(actor domain.Actor, enabled bool) (bool, error)
	CanAccessAdmin(ctx context.Context, actor domain.Actor) (bool, error)
}

type UserService interface {
	GetUser(ctx context.Context, id string) (domain.User, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, upd service.ProfileUpdate) (domain.User, error)
	Page(ctx context.Context, actor domain.Actor, q service.PageQuery) (service.PageView, error)
}

type PostService interface {
	CreatePost(ctx context.Context, actor domain.Actor, in service.NewPost) (service.CreatedPost, error)
	ToggleLike(ctx context.Context, actor domain.Actor, postID string) (service.LikeResult, error)
	DeletePost(ctx context.Context, actor domain.Actor, postID string) (service.DeletedPost, error)
}

type PartyService interface {
	CreateParty(ctx context.Context, actor domain.Actor, in service.NewParty) (domain.Party, error)
	UpdateCover(ctx context.Context, actor domain.Actor, partyID string, upload service.ImageSource, coverURL string) (service.CoverUpdate, error)
	DeleteParty(ctx context.Context, actor domain.Actor, partyID string) error
}

type NotificationService interface {
	Poll(ctx context.Context, actor domain.Actor) ([]domain.Notification, error)
	Drain(ctx context.Context, actor domain.Actor, limit int) ([]domain.Notification, error)
}

type ChallengeService interface {
	Random(ctx context.Context, bag []int) (string, []int, error)
}

type AdminService interface {
	AddPoints(ctx context.Context, actor domain.Actor, targetID string, delta int, reason string) error
	CreateUser(ctx context.Context, actor domain.Actor, in service.NewUser) (domain.User, error)
	DeleteUser(ctx context.Context, actor domain.Actor, targetID string) error
	ToggleMap(ctx context.Context, actor domain.Actor, enabled bool) (bool, error)
	CreateChallenge(ctx context.Context, actor domain.Actor, text, difficulty string) (domain.Challenge, error)
	DeleteChallenge(ctx context.Context, actor domain.Actor, challengeID string) error
	CreateItem(ctx context.Context, actor domain.Actor, in service.NewItem) error
	CreateAchievement(ctx context.Context, actor domain.Actor, name, description, icon string) (domain.Achievement, error)
	AssignAchievement(ctx context.Context, actor domain.Actor, achievementID string, target domain.Target) error
	ImportBackup(ctx context.Context, actor domain.Actor, body []byte) (domain.Document, error)
	ExportBackup(ctx context.Context, actor domain.Actor) (service.Backup, error)
}

type Uploader interface {
	SaveImage(fh *multipart.FileHeader) (string, error)
	SaveMediaBatch(files []*multipart.FileHeader, max int) upload.BatchResult
	Limit() int64
}

// Services groups the operations reachable through the action endpoint.
type Services struct {
	Auth          AuthService
	Users         UserService
	Posts         PostService
	Parties       PartyService
	Notifications NotificationService
	Challenges    ChallengeService
	Admin         AdminService
}

// result describes how a successful action answers. On failure only page is used.
type result struct {
	page    string
	message string
	// flash replaces message in the redirect flash when set.
	flash string
	kind  string
	data  any
	// written is set by actions that streamed their own response.
	written bool
}

type actionFunc func(ctx *gin.Context, actor domain.Actor) (result, error)

type ActionHandler struct {
	svc      Services
	sessions *session.Store
	cookies  *middleware.Sessions
	uploads  Uploader

	actions map[string]actionFunc
}

func NewActionHandler(svc Services, sessions *session.Store, cookies *middleware.Sessions, uploads Uploader) *ActionHandler {
	h := &ActionHandler{
		svc:      svc,
		sessions: sessions,
		cookies:  cookies,
		uploads:  uploads,
	}

	h.actions = map[string]actionFunc{
		"login":              h.login,
		"logout":             h.logout,
		"set_password":       h.setPassword,
		"update_profile":     h.updateProfile,
		"toggle_admin_mode":  h.toggleAdminMode,
		"poll_notifications": h.pollNotifications,

		"create_post":  h.createPost,
		"toggle_like":  h.toggleLike,
		"delete_post":  h.deletePost,
		"create_party": h.createParty,

		"admin_export_backup":      h.exportBackup,
		"admin_import_backup":      h.importBackup,
		"admin_add_points":         h.addPoints,
		"admin_create_user":        h.createUser,
		"admin_delete_user":        h.deleteUser,
		"admin_toggle_map":         h.toggleMap,
		"admin_create_challenge":   h.createChallenge,
		"admin_delete_challenge":   h.deleteChallenge,
		"admin_update_party_cover": h.updatePartyCover,
		"admin_delete_party":       h.deleteParty,
		"admin_create_item":        h.createItem,
		"admin_create_achievement": h.createAchievement,
		"admin_assign_achievement": h.assignAchievement,
	}

	return h
}

// HandleAction godoc
// @Summary      Run a form action
// @Description  Every mutation goes through this endpoint, selected by the action field.
// @Description  XMLHttpRequest callers get a JSON envelope, browsers a 303 redirect with a flash.
// @Tags         actions
// @Accept       x-www-form-urlencoded,mpfd
// @Produce      json
// @Param        action  formData  string  true  "action name"
// @Param        csrf    formData  string  true  "session anti-forgery token"
// @Success      200  {object}  response.Envelope
// @Success      303
// @Failure      400  {object}  response.Envelope
// @Failure      403  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Failure      419  {object}  response.Envelope
// @Failure      429  {object}  response.Envelope
// @Failure      500  {object}  response.Envelope
// @Router       /actions [post]
func (h *ActionHandler) HandleAction(ctx *gin.Context) {
	sess := h.sessions.Get(middleware.SessionID(ctx))
	actor := domain.Actor{
		UserID:    sess.UserID,
		SessionID: sess.ID,
		AdminMode: sess.AdminMode,
	}

	action := strings.TrimSpace(ctx.PostForm("action"))
	fn, ok := h.actions[action]
	if !ok {
		h.finish(ctx, actor, action, result{page: service.PageDashboard}, domain.NewValidationError("action", "Action inconnue."))
		return
	}

	res, err := fn(ctx, actor)
	h.finish(ctx, actor, action, res, err)
}

func (h *ActionHandler) finish(ctx *gin.Context, actor domain.Actor, action string, res result, err error) {
	if err != nil {
		e := response.FromError(err)
		if middleware.IsAJAX(ctx) {
			response.RenderFail(ctx, e)
			return
		}

		if e.HTTPStatusCode >= http.StatusInternalServerError {
			zap.L().Error("action failed", zap.String("action", action), zap.Error(err))
		}
		h.redirect(ctx, actor.SessionID, res.page, flashKind(err), e.ErrorMsg)
		return
	}

	if res.written {
		return
	}

	if middleware.IsAJAX(ctx) {
		response.RenderOK(ctx, res.message, res.data)
		return
	}

	msg := res.message
	if res.flash != "" {
		msg = res.flash
	}
	kind := res.kind
	if kind == "" {
		kind = session.FlashSuccess
	}
	h.redirect(ctx, actor.SessionID, res.page, kind, msg)
}

func (h *ActionHandler) redirect(ctx *gin.Context, sessionID, page, kind, message string) {
	if message != "" {
		h.sessions.Update(sessionID, func(s *session.Session) { s.SetFlash(kind, message) })
	}

	target := "/"
	if page != "" {
		target += "?" + url.Values{"page": {page}}.Encode()
	}
	ctx.Redirect(http.StatusSeeOther, target)
}

// flashKind softens refusals the user can simply retry or ignore.
func flashKind(err error) string {
	if errors.Is(err, domain.ErrRateLimited) || errors.Is(err, service.ErrSelfLike) {
		return session.FlashInfo
	}

	return session.FlashError
}

// bind reads the form into req and runs its validation, if any.
func bind(ctx *gin.Context, req any) error {
	if err := ctx.ShouldBind(req); err != nil {
		return domain.NewValidationError("form", "Formulaire invalide.")
	}

	if v, ok := req.(interface{ Validate() error }); ok {
		return v.Validate()
	}

	return nil
}

// redirectPage keeps the page the form came from, defaulting to fallback.
func redirectPage(candidate, fallback string) string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return fallback
	}

	return service.SafePage(candidate, true)
}

func wrap(op string, err error) error {
	return fmt.Errorf("v1.HandleAction -> %s -> %w", op, err)
}
