package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/laconfrerie/confrerie-api/internal/api/handler/v1/request"
	"github.com/laconfrerie/confrerie-api/internal/domain"
	"github.com/laconfrerie/confrerie-api/internal/service"
)

func (h *ActionHandler) exportBackup(ctx *gin.Context, actor domain.Actor) (result, error) {
	backup, err := h.svc.Admin.ExportBackup(ctx.Request.Context(), actor)
	if err != nil {
		return result{page: service.PageDashboard}, wrap("h.svc.Admin.ExportBackup", err)
	}

	renderBackup(ctx, backup)

	return result{written: true}, nil
}

func renderBackup(ctx *gin.Context, backup service.Backup) {
	ctx.Header("Content-Disposition", `attachment; filename="`+backup.FileName+`"`)
	ctx.Data(http.StatusOK, "application/json; charset=utf-8", backup.Body)
}

func (h *ActionHandler) importBackup(ctx *gin.Context, actor domain.Actor) (result, error) {
	res := result{page: service.PageAdmin}

	fh, err := ctx.FormFile("backup_file")
	if err != nil {
		return res, domain.NewValidationError("backup_file", "Fichier backup manquant.")
	}

	f, err := fh.Open()
	if err != nil {
		return res, domain.NewValidationError("backup_file", "Lecture du backup impossible.")
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		return res, domain.NewValidationError("backup_file", "Lecture du backup impossible.")
	}

	if _, err = h.svc.Admin.ImportBackup(ctx.Request.Context(), actor, body); err != nil {
		return res, wrap("h.svc.Admin.ImportBackup", err)
	}
	res.message = "Backup restaure."

	return res, nil
}

func (h *ActionHandler) addPoints(ctx *gin.Context, actor domain.Actor) (result, error) {
	res := result{page: service.PageAdmin}

	var req request.AddPointsRequest
	if err := bind(ctx, &req); err != nil {
		return res, err
	}

	if err := h.svc.Admin.AddPoints(ctx.Request.Context(), actor, req.TargetUserID, req.Delta(), req.Reason); err != nil {
		return res, wrap("h.svc.Admin.AddPoints", err)
	}
	res.message = "Points mis a jour."

	return res, nil
}

func (h *ActionHandler) createUser(ctx *gin.Context, actor domain.Actor) (result, error) {
	res := result{page: service.PageAdmin}

	var req request.CreateUserRequest
	if err := bind(ctx, &req); err != nil {
		return res, err
	}

	user, err := h.svc.Admin.CreateUser(ctx.Request.Context(), actor, service.NewUser{
		Name:         req.Name,
		ClassName:    req.ClassName,
		Role:         req.Role,
		Password:     req.Password,
		AvatarUpload: h.imageSource(ctx, "new_user_avatar_file"),
		AvatarURL:    req.AvatarURL,
	})
	if err != nil {
		return res, wrap("h.svc.Admin.CreateUser", err)
	}

	res.message = "Compte cree."
	res.data = gin.H{"user": user.Public()}

	return res, nil
}

func (h *ActionHandler) deleteUser(ctx *gin.Context, actor domain.Actor) (result, error) {
	res := result{page: service.PageAdmin}

	var req request.DeleteUserRequest
	if err := bind(ctx, &req); err != nil {
		return res, err
	}

	if err := h.svc.Admin.DeleteUser(ctx.Request.Context(), actor, req.TargetUserID); err != nil {
		return res, wrap("h.svc.Admin.DeleteUser", err)
	}
	h.sessions.ResetUser(req.TargetUserID)
	res.message = "Compte supprime."

	return res, nil
}

func (h *ActionHandler) toggleMap(ctx *gin.Context, actor domain.Actor) (result, error) {
	res := result{page: service.PageAdmin}

	var req request.ToggleMapRequest
	if err := bind(ctx, &req); err != nil {
		return res, err
	}

	enabled, err := h.svc.Admin.ToggleMap(ctx.Request.Context(), actor, req.Enabled())
	if err != nil {
		return res, wrap("h.svc.Admin.ToggleMap", err)
	}

	res.message = "Parametre carte mis a jour."
	res.data = gin.H{"isMapEnabled": enabled}

	return res, nil
}

func (h *ActionHandler) createChallenge(ctx *gin.Context, actor domain.Actor) (result, error) {
	res := result{page: service.PageAdmin}

	var req request.CreateChallengeRequest
	if err := bind(ctx, &req); err != nil {
		return res, err
	}

	challenge, err := h.svc.Admin.CreateChallenge(ctx.Request.Context(), actor, req.Text, req.Difficulty)
	if err != nil {
		return res, wrap("h.svc.Admin.CreateChallenge", err)
	}

	res.message = "Defi ajoute."
	res.data = gin.H{"challenge": challenge}

	return res, nil
}

func (h *ActionHandler) deleteChallenge(ctx *gin.Context, actor domain.Actor) (result, error) {
	res := result{page: service.PageAdmin}

	var req request.DeleteChallengeRequest
	if err := bind(ctx, &req); err != nil {
		return res, err
	}

	if err := h.svc.Admin.DeleteChallenge(ctx.Request.Context(), actor, req.ChallengeID); err != nil {
		return res, wrap("h.svc.Admin.DeleteChallenge", err)
	}
	res.message = "Defi supprime."

	return res, nil
}

func (h *ActionHandler) updatePartyCover(ctx *gin.Context, actor domain.Actor) (result, error) {
	res := result{page: service.PageAdmin}

	var req request.PartyRequest
	if err := bind(ctx, &req); err != nil {
		return res, err
	}

	cover, err := h.svc.Parties.UpdateCover(ctx.Request.Context(), actor, req.PartyID, h.imageSource(ctx, "party_cover_file"), req.CoverURL)
	if err != nil {
		return res, wrap("h.svc.Parties.UpdateCover", err)
	}

	res.message = "Photo de soiree mise a jour."
	res.data = cover

	return res, nil
}

func (h *ActionHandler) deleteParty(ctx *gin.Context, actor domain.Actor) (result, error) {
	res := result{page: service.PageAdmin}

	var req request.PartyRequest
	if err := bind(ctx, &req); err != nil {
		return res, err
	}

	if err := h.svc.Parties.DeleteParty(ctx.Request.Context(), actor, req.PartyID); err != nil {
		return res, wrap("h.svc.Parties.DeleteParty", err)
	}

	res.message = "Soiree supprimee."
	res.data = gin.H{"partyId": req.PartyID}

	return res, nil
}

func (h *ActionHandler) createItem(ctx *gin.Context, actor domain.Actor) (result, error) {
	res := result{page: service.PageAdmin}

	var req request.CreateItemRequest
	if err := bind(ctx, &req); err != nil {
		return res, err
	}

	err := h.svc.Admin.CreateItem(ctx.Request.Context(), actor, service.NewItem{
		Name:        req.Name,
		Description: req.Description,
		Rarity:      req.Rarity,
		Target:      req.ParsedTarget(),
		Image:       h.imageSource(ctx, "item_image_file"),
	})
	if err != nil {
		return res, wrap("h.svc.Admin.CreateItem", err)
	}
	res.message = "Objet distribue."

	return res, nil
}

func (h *ActionHandler) createAchievement(ctx *gin.Context, actor domain.Actor) (result, error) {
	res := result{page: service.PageAdmin}

	var req request.CreateAchievementRequest
	if err := bind(ctx, &req); err != nil {
		return res, err
	}

	achievement, err := h.svc.Admin.CreateAchievement(ctx.Request.Context(), actor, req.Name, req.Description, req.Icon)
	if err != nil {
		return res, wrap("h.svc.Admin.CreateAchievement", err)
	}

	res.message = "Succes ajoute a la bibliotheque."
	res.data = gin.H{"achievement": achievement}

	return res, nil
}

func (h *ActionHandler) assignAchievement(ctx *gin.Context, actor domain.Actor) (result, error) {
	res := result{page: service.PageAdmin}

	var req request.AssignAchievementRequest
	if err := bind(ctx, &req); err != nil {
		return res, err
	}

	if err := h.svc.Admin.AssignAchievement(ctx.Request.Context(), actor, req.AchievementID, req.ParsedTarget()); err != nil {
		return res, wrap("h.svc.Admin.AssignAchievement", err)
	}
	res.message = "Succes distribue."

	return res, nil
}
