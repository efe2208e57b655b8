package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/laconfrerie/confrerie-api/internal/api/handler/v1/response"
	"github.com/laconfrerie/confrerie-api/internal/api/middleware"
	"github.com/laconfrerie/confrerie-api/internal/domain"
	"github.com/laconfrerie/confrerie-api/internal/service"
	"github.com/laconfrerie/confrerie-api/internal/session"
)

type PageHandler struct {
	svc       Services
	sessions  *session.Store
	pageLimit int
}

func NewPageHandler(svc Services, sessions *session.Store, pageLimit int) *PageHandler {
	return &PageHandler{
		svc:       svc,
		sessions:  sessions,
		pageLimit: pageLimit,
	}
}

// HandlePage godoc
// @Summary      Get the page read model
// @Description  Consumes the pending flash and marks the shown notifications as read.
// @Description  With download=backup an admin receives the backup file instead.
// @Tags         pages
// @Produce      json
// @Param        page       query  string  false  "dashboard, parties, feed, rankings, map or admin"
// @Param        view_user  query  string  false  "profile shown on the dashboard"
// @Param        party      query  string  false  "party selected on the parties page"
// @Param        download   query  string  false  "backup"
// @Success      200  {object}  response.Page
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       / [get]
func (h *PageHandler) HandlePage(ctx *gin.Context) {
	sess := h.sessions.Get(middleware.SessionID(ctx))
	actor := domain.Actor{
		UserID:    sess.UserID,
		SessionID: sess.ID,
		AdminMode: sess.AdminMode,
	}

	if ctx.Query("download") == "backup" {
		backup, err := h.svc.Admin.ExportBackup(ctx.Request.Context(), actor)
		if err != nil {
			response.RenderErr(ctx, response.FromError(err))
			return
		}
		renderBackup(ctx, backup)
		return
	}

	view, err := h.svc.Users.Page(ctx.Request.Context(), actor, service.PageQuery{
		Page:       ctx.Query("page"),
		ViewUserID: ctx.Query("view_user"),
		PartyID:    ctx.Query("party"),
	})
	if err != nil {
		err = fmt.Errorf("v1.HandlePage -> h.svc.Users.Page -> %w", err)
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	challenge, bag, err := h.svc.Challenges.Random(ctx.Request.Context(), sess.ChallengeBag)
	if err != nil {
		err = fmt.Errorf("v1.HandlePage -> h.svc.Challenges.Random -> %w", err)
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	notifications := []domain.Notification{}
	if view.IsLoggedIn {
		drained, err := h.svc.Notifications.Drain(ctx.Request.Context(), actor, h.pageLimit)
		if err != nil {
			err = fmt.Errorf("v1.HandlePage -> h.svc.Notifications.Drain -> %w", err)
			response.RenderErr(ctx, response.FromError(err))
			return
		}
		notifications = append(notifications, drained...)
	}

	page := response.Page{
		PageView:        view,
		CSRF:            sess.CSRF,
		RandomChallenge: challenge,
		Notifications:   notifications,
	}
	h.sessions.Update(sess.ID, func(s *session.Session) {
		page.Flash = s.TakeFlash()
		s.ChallengeBag = bag
	})

	ctx.JSON(http.StatusOK, page)
}
