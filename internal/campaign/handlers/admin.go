package handlers

import (
	"log/slog"
	"net/http"

	"campaign-server/internal/campaign"
	"campaign-server/internal/shared/errors"
	"campaign-server/internal/shared/response"
)

type closePhaseRequest struct {
	NewSubSector string `json:"new_sub_sector"`
}

func (h *CampaignHandler) ClosePhase(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "close_phase")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req closePhaseRequest
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, &req); err != nil {
			response.Error(w, r, logger, err)
			return
		}
	}

	result, err := h.service.ClosePhase(r.Context(), actorFromRequest(r), req.NewSubSector)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

func (h *CampaignHandler) ModifyStats(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "modify_stats")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var override campaign.StatsOverride
	if err := decodeBody(w, r, &override); err != nil {
		response.Error(w, r, logger, err)
		return
	}
	override.Faction = campaign.Capitalize(override.Faction)

	result, err := h.service.ModifyStats(r.Context(), actorFromRequest(r), override)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

type addSystemRequest struct {
	Name        string `json:"name"`
	FirstPlanet string `json:"first_planet"`
	SubSector   string `json:"sub_sector"`
}

func (h *CampaignHandler) AddSystem(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "add_system")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req addSystemRequest
	if err := decodeBody(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	result, err := h.service.AddSystem(r.Context(), actorFromRequest(r), req.Name, req.FirstPlanet, req.SubSector)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, result)
}

type addPlanetRequest struct {
	Name string `json:"name"`
}

func (h *CampaignHandler) AddPlanet(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "add_planet")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req addPlanetRequest
	if err := decodeBody(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	result, err := h.service.AddPlanet(r.Context(), actorFromRequest(r), r.PathValue("name"), req.Name)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, result)
}

type setActiveRequest struct {
	Active *bool `json:"active"`
}

func (h *CampaignHandler) SetSystemActive(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "toggle_system_active")

	if r.Method != http.MethodPut {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req setActiveRequest
	if err := decodeBody(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if req.Active == nil {
		response.Error(w, r, logger, errors.Validation("active is required"))
		return
	}

	result, err := h.service.SetSystemActive(r.Context(), actorFromRequest(r), r.PathValue("name"), *req.Active)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

func (h *CampaignHandler) SetSystemRule(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "set_system_rule")

	if r.Method != http.MethodPut {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var update campaign.RuleUpdate
	if err := decodeBody(w, r, &update); err != nil {
		response.Error(w, r, logger, err)
		return
	}
	update.System = r.PathValue("name")

	result, err := h.service.SetSystemRule(r.Context(), actorFromRequest(r), update)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

func (h *CampaignHandler) Reload(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "reload_state")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	if err := h.service.Reload(r.Context(), actorFromRequest(r)); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	status, err := h.service.CurrentPhase()
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, status)
}
