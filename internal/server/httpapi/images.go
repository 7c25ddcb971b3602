package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/gophforge/internal/common"
	"github.com/dmitrijs2005/gophforge/internal/server/services"
)

type generateImageRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
	ImageSize   string `json:"image_size"`
}

// handleGenerateImage processes POST /generate-image. In inline mode the
// image bytes are the response body; in persist mode the image is stored and
// its URL returned.
func (h *Handler) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	req := generateImageRequest{
		AspectRatio: common.DefaultAspectRatio,
		ImageSize:   common.DefaultImageSize,
	}
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Prompt == "" {
		writeDetail(w, http.StatusBadRequest, "prompt is required")
		return
	}

	in := services.ImageRequest{Prompt: req.Prompt, AspectRatio: req.AspectRatio, ImageSize: req.ImageSize}

	if h.opts.ImageMode == ImageModePersist {
		stored, err := h.images.GenerateAndStore(r.Context(), in)
		if err != nil {
			writeError(r.Context(), w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, storedImageResponse{
			Status:     "success",
			ServerName: stored.Label,
			ImageURL:   stored.URL,
		})
		return
	}

	img, err := h.images.Generate(r.Context(), in)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", img.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}
