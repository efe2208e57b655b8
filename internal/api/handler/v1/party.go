package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/laconfrerie/confrerie-api/internal/api/handler/v1/request"
	"github.com/laconfrerie/confrerie-api/internal/domain"
	"github.com/laconfrerie/confrerie-api/internal/service"
)

func (h *ActionHandler) createParty(ctx *gin.Context, actor domain.Actor) (result, error) {
	res := result{page: service.PageParties}

	var req request.CreatePartyRequest
	if err := bind(ctx, &req); err != nil {
		return res, err
	}

	party, err := h.svc.Parties.CreateParty(ctx.Request.Context(), actor, service.NewParty{
		Name:         req.Name,
		LocationName: req.LocationName,
		Date:         req.Date,
		Lat:          req.Lat,
		Lng:          req.Lng,
		Cover:        h.imageSource(ctx, "party_cover_file"),
	})
	if err != nil {
		return res, wrap("h.svc.Parties.CreateParty", err)
	}

	res.page = redirectPage(req.RedirectPage, service.PageParties)
	res.message = "Soiree ajoutee."
	res.data = gin.H{"party": party}

	return res, nil
}
