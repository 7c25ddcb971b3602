package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type createItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// handleCreateItem processes POST /api/items.
func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		writeDetail(w, http.StatusBadRequest, "name is required")
		return
	}

	item, err := h.items.Create(r.Context(), *req.Name, req.Description)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemResponse(item))
}

// handleListItems processes GET /api/items.
func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	list, err := h.items.List(r.Context())
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	resp := make([]itemResponse, 0, len(list))
	for _, it := range list {
		resp = append(resp, toItemResponse(it))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetItem processes GET /api/items/{id}.
func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.items.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}

// handleDeleteItem processes DELETE /api/items/{id}.
func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.items.Delete(r.Context(), id); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("Item %s deleted successfully", id)})
}

// decodeJSON reads exactly one JSON value from the request body.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request payload: %v", err)
	}
	return ensureSingleJSON(dec)
}

// ensureSingleJSON ensures only a single JSON object is in the request body.
func ensureSingleJSON(dec *json.Decoder) error {
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	var extra struct{}
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
