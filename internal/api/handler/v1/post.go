package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/laconfrerie/confrerie-api/internal/api/handler/v1/request"
	"github.com/laconfrerie/confrerie-api/internal/domain"
	"github.com/laconfrerie/confrerie-api/internal/service"
)

func (h *ActionHandler) createPost(ctx *gin.Context, actor domain.Actor) (result, error) {
	res := result{page: service.PageFeed}

	var req request.CreatePostRequest
	if err := bind(ctx, &req); err != nil {
		return res, err
	}

	files := formFiles(ctx, postMediaField)
	created, err := h.svc.Posts.CreatePost(ctx.Request.Context(), actor, service.NewPost{
		PartyID:     req.PartyID,
		Description: req.Description,
		MediaNames:  fileNames(files),
		Media:       h.mediaSource(files),
	})
	if err != nil {
		return res, wrap("h.svc.Posts.CreatePost", err)
	}

	res.message = fmt.Sprintf("Post cree. +%d pts.", created.Post.PointsAwarded)
	res.flash = "Post cree."
	res.data = created

	return res, nil
}

func (h *ActionHandler) toggleLike(ctx *gin.Context, actor domain.Actor) (result, error) {
	var req request.PostRequest
	if err := bind(ctx, &req); err != nil {
		return result{page: redirectPage(req.RedirectPage, service.PageFeed)}, err
	}
	res := result{page: redirectPage(req.RedirectPage, service.PageFeed)}

	like, err := h.svc.Posts.ToggleLike(ctx.Request.Context(), actor, req.PostID)
	if err != nil {
		return res, wrap("h.svc.Posts.ToggleLike", err)
	}

	res.message = "Like mis a jour."
	res.data = like

	return res, nil
}

func (h *ActionHandler) deletePost(ctx *gin.Context, actor domain.Actor) (result, error) {
	var req request.PostRequest
	if err := bind(ctx, &req); err != nil {
		return result{page: redirectPage(req.RedirectPage, service.PageFeed)}, err
	}
	res := result{page: redirectPage(req.RedirectPage, service.PageFeed)}

	deleted, err := h.svc.Posts.DeletePost(ctx.Request.Context(), actor, req.PostID)
	if err != nil {
		return res, wrap("h.svc.Posts.DeletePost", err)
	}

	res.message = "Post supprime."
	res.data = deleted

	return res, nil
}
