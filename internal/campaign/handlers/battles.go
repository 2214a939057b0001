package handlers

import (
	"log/slog"
	"net/http"

	"campaign-server/internal/campaign"
	"campaign-server/internal/shared/errors"
	"campaign-server/internal/shared/response"
)

func (h *CampaignHandler) RecordBattle(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "record_battle")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var battle campaign.Battle
	if err := decodeBody(w, r, &battle); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	result, err := h.service.RecordBattle(r.Context(), actorFromRequest(r), battle.Normalized())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, result)
}

type backdatedBattleRequest struct {
	campaign.Battle
	SubSector string `json:"sub_sector"`
	Phase     int    `json:"phase"`
}

func (h *CampaignHandler) RecordBackdatedBattle(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "record_backdated_battle")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req backdatedBattleRequest
	if err := decodeBody(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if req.Phase < 1 {
		response.Error(w, r, logger, errors.Validation("a target phase is required"))
		return
	}

	target := campaign.PhaseRef{SubSector: req.SubSector, Number: req.Phase}
	result, err := h.service.RecordBackdatedBattle(r.Context(), actorFromRequest(r), req.Battle.Normalized(), target)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, result)
}
