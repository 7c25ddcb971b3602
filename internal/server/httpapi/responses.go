package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophforge/internal/common"
	"github.com/dmitrijs2005/gophforge/internal/logging"
	"github.com/dmitrijs2005/gophforge/internal/server/imagegen"
	"github.com/dmitrijs2005/gophforge/internal/server/models"
)

type itemResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toItemResponse(it *models.Item) itemResponse {
	return itemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		CreatedAt:   it.CreatedAt,
	}
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type storedImageResponse struct {
	Status     string `json:"status"`
	ServerName string `json:"server_name"`
	ImageURL   string `json:"image_url"`
}

type infoResponse struct {
	Message     string       `json:"message"`
	Environment string       `json:"environment"`
	Database    databaseInfo `json:"database"`
	Timestamp   string       `json:"timestamp"`
}

type databaseInfo struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeError maps service errors onto status codes.
func writeError(ctx context.Context, w http.ResponseWriter, l logging.Logger, err error) {
	var te *imagegen.TransportError

	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeDetail(w, http.StatusNotFound, "Item not found")
	case errors.Is(err, common.ErrorValidation):
		writeDetail(w, http.StatusBadRequest, validationDetail(err))
	case errors.Is(err, common.ErrGenerationFailed):
		writeDetail(w, http.StatusInternalServerError, common.ErrGenerationFailed.Error())
	case errors.As(err, &te):
		l.Warn(ctx, "image generator call failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, te.Error())
	default:
		l.Error(ctx, "request failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, common.ErrorInternal.Error())
	}
}

// validationDetail turns "validation error: name is required" into
// "name is required".
func validationDetail(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, common.ErrorValidation.Error()+": "); i >= 0 {
		return msg[i+len(common.ErrorValidation.Error())+2:]
	}
	return msg
}
