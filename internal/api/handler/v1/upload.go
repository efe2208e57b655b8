package v1

import (
	"mime/multipart"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/laconfrerie/confrerie-api/internal/domain"
	"github.com/laconfrerie/confrerie-api/internal/service"
)

const postMediaField = "post_media_files"

// imageSource stores the optional image sent in field. A failed upload counts as no image.
func (h *ActionHandler) imageSource(ctx *gin.Context, field string) service.ImageSource {
	return func() (string, error) {
		fh, err := ctx.FormFile(field)
		if err != nil {
			return "", nil
		}

		url, err := h.uploads.SaveImage(fh)
		if err != nil {
			zap.L().Warn("image upload dropped", zap.String("field", field), zap.String("file", fh.Filename), zap.Error(err))
			return "", nil
		}

		return url, nil
	}
}

func formFiles(ctx *gin.Context, field string) []*multipart.FileHeader {
	form, err := ctx.MultipartForm()
	if err != nil || form == nil {
		return nil
	}

	return form.File[field]
}

func fileNames(files []*multipart.FileHeader) []string {
	names := make([]string, 0, len(files))
	for _, fh := range files {
		names = append(names, fh.Filename)
	}

	return names
}

// mediaSource stores the post media. It fails only when files were selected and none could be kept.
func (h *ActionHandler) mediaSource(files []*multipart.FileHeader) service.MediaSource {
	return func() ([]domain.Media, error) {
		res := h.uploads.SaveMediaBatch(files, domain.MaxPostMedia)
		if res.Selected == 0 || len(res.Media) > 0 {
			return res.Media, nil
		}

		msg := "Upload impossible: medias non supportes."
		switch {
		case res.TooLarge > 0:
			msg = "Fichier trop lourd pour le serveur (max " + humanize.IBytes(uint64(h.uploads.Limit())) + ")."
		case res.Failed > 0:
			msg = "Echec upload media. Reessaie avec un fichier plus leger."
		}

		return nil, domain.NewValidationError(postMediaField, msg)
	}
}
