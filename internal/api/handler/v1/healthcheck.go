package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/laconfrerie/confrerie-api/internal/api/handler/v1/response"
	"github.com/laconfrerie/confrerie-api/internal/domain"
)

type DocumentLoader interface {
	Load(ctx context.Context) (domain.Document, error)
}

type HealthHandler struct {
	repo DocumentLoader
}

func NewHealthHandler(repo DocumentLoader) *HealthHandler {
	return &HealthHandler{
		repo: repo,
	}
}

// HandleHealthcheck godoc
// @Summary      Healthcheck
// @Description  Reports whether the document store can be read.
// @Tags         healthcheck
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      500  {object}  response.Err
// @Router       /healthz [get]
func (h *HealthHandler) HandleHealthcheck(ctx *gin.Context) {
	if _, err := h.repo.Load(ctx.Request.Context()); err != nil {
		err = fmt.Errorf("v1.HandleHealthcheck -> h.repo.Load -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
