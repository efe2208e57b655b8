package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/laconfrerie/confrerie-api/internal/api/handler/v1/request"
	"github.com/laconfrerie/confrerie-api/internal/domain"
	"github.com/laconfrerie/confrerie-api/internal/service"
	"github.com/laconfrerie/confrerie-api/internal/session"
)

func (h *ActionHandler) login(ctx *gin.Context, actor domain.Actor) (result, error) {
	res := result{page: service.PageDashboard}

	var req request.LoginRequest
	if err := bind(ctx, &req); err != nil {
		return res, err
	}

	user, err := h.svc.Auth.Login(ctx.Request.Context(), req.UserID, req.Password)
	if err != nil {
		return res, wrap("h.svc.Auth.Login", err)
	}

	h.sessions.Update(actor.SessionID, func(s *session.Session) {
		s.UserID = user.ID
		s.ChallengeBag = nil
		if user.ID != domain.AdminDelegateID {
			s.AdminMode = false
		}
	})
	if err = h.cookies.Remember(ctx, user.ID); err != nil {
		return res, wrap("h.cookies.Remember", err)
	}

	res.message = "Connexion reussie."
	if user.Role == domain.RoleMember && !user.HasPassword() {
		res.kind = session.FlashInfo
		res.message = "Premiere connexion: pense a definir ton mot de passe dans Parametres."
	}
	res.data = gin.H{"user": user.Public()}

	return res, nil
}

func (h *ActionHandler) logout(ctx *gin.Context, actor domain.Actor) (result, error) {
	h.sessions.Update(actor.SessionID, func(s *session.Session) { s.Reset() })
	h.cookies.ClearRemember(ctx)

	return result{
		page:    service.PageDashboard,
		message: "Deconnexion ok.",
		kind:    session.FlashInfo,
	}, nil
}

func (h *ActionHandler) setPassword(ctx *gin.Context, actor domain.Actor) (result, error) {
	res := result{page: service.PageDashboard}

	var req request.SetPasswordRequest
	if err := bind(ctx, &req); err != nil {
		return res, err
	}

	if err := h.svc.Auth.SetPassword(ctx.Request.Context(), actor, req.NewPassword); err != nil {
		return res, wrap("h.svc.Auth.SetPassword", err)
	}
	res.message = "Mot de passe enregistre."

	return res, nil
}

func (h *ActionHandler) updateProfile(ctx *gin.Context, actor domain.Actor) (result, error) {
	res := result{page: service.PageDashboard}

	var req request.UpdateProfileRequest
	if err := bind(ctx, &req); err != nil {
		return res, err
	}

	user, err := h.svc.Users.UpdateProfile(ctx.Request.Context(), actor, service.ProfileUpdate{
		Name:          req.Name,
		ClassName:     req.ClassName,
		Bio:           req.Bio,
		Theme:         req.Theme,
		ProfileTheme:  req.ProfileTheme,
		NameStyle:     req.NameStyle,
		ProfileTitle:  req.ProfileTitle,
		ProfileMotto:  req.ProfileMotto,
		FavoriteDrink: req.FavoriteDrink,
		BannerURL:     req.BannerURL,
		NewPassword:   req.NewPassword,
		AvatarUpload:  h.imageSource(ctx, "avatar_file"),
		AvatarURL:     req.AvatarURL,
	})
	if err != nil {
		return res, wrap("h.svc.Users.UpdateProfile", err)
	}

	res.message = "Profil mis a jour."
	res.data = gin.H{"user": user.Public()}

	return res, nil
}

func (h *ActionHandler) toggleAdminMode(ctx *gin.Context, actor domain.Actor) (result, error) {
	res := result{page: service.PageDashboard}

	var req request.ToggleAdminModeRequest
	if err := bind(ctx, &req); err != nil {
		return res, err
	}

	enabled, err := h.svc.Auth.ToggleAdminMode(actor, req.Enabled())
	if err != nil {
		return res, wrap("h.svc.Auth.ToggleAdminMode", err)
	}
	h.sessions.Update(actor.SessionID, func(s *session.Session) { s.AdminMode = enabled })

	res.message = "Mode admin desactive."
	if enabled {
		res.message = "Mode admin active."
	}
	res.data = gin.H{"adminEnabled": enabled}

	return res, nil
}

func (h *ActionHandler) pollNotifications(ctx *gin.Context, actor domain.Actor) (result, error) {
	res := result{page: service.PageDashboard}

	notifications, err := h.svc.Notifications.Poll(ctx.Request.Context(), actor)
	if err != nil {
		return res, wrap("h.svc.Notifications.Poll", err)
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}

	res.message = "Notifications synchronisees."
	res.data = gin.H{"notifications": notifications}

	return res, nil
}
