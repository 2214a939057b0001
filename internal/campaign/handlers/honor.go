package handlers

import (
	"log/slog"
	"net/http"

	"campaign-server/internal/honor"
	"campaign-server/internal/shared/errors"
	"campaign-server/internal/shared/response"
)

func (h *CampaignHandler) ListHonorKeywords(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_honor_keywords")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	keywords, err := h.service.HonorKeywords(r.URL.Query().Get("q"))
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, keywords)
}

type drawHonorRequest struct {
	Keywords []string       `json:"keywords"`
	Threads  []honor.Thread `json:"threads"`
}

// DrawHonor picks a random honor among the threads supplied by the caller.
func (h *CampaignHandler) DrawHonor(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "draw_honor")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req drawHonorRequest
	if err := decodeBody(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	result, err := h.service.DrawHonor(req.Keywords, req.Threads)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

type refreshKeywordsRequest struct {
	// Boards holds the available tags of each honor board.
	Boards [][]string `json:"boards"`
}

func (h *CampaignHandler) RefreshHonorKeywords(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "refresh_honor_keywords")

	if r.Method != http.MethodPut {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req refreshKeywordsRequest
	if err := decodeBody(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	result, err := h.service.RefreshHonorKeywords(r.Context(), actorFromRequest(r), req.Boards...)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}
