package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"campaign-server/internal/campaign"
	"campaign-server/internal/shared/errors"
	"campaign-server/internal/shared/response"
)

func (h *CampaignHandler) GetPhase(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_phase")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	status, err := h.service.CurrentPhase()
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, status)
}

// GetPhaseHistory serves an archived phase: ?phase=N[&sub_sector=name].
func (h *CampaignHandler) GetPhaseHistory(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_phase_history")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	subSector := r.URL.Query().Get("sub_sector")
	phaseStr := r.URL.Query().Get("phase")
	if phaseStr == "" {
		phases, err := h.service.ArchivedPhases(subSector)
		if err != nil {
			response.Error(w, r, logger, err)
			return
		}
		response.Success(w, http.StatusOK, map[string]any{"phases": phases})
		return
	}

	number, err := strconv.Atoi(phaseStr)
	if err != nil || number < 1 {
		response.Error(w, r, logger, errors.Validationf("invalid phase number: %s", phaseStr))
		return
	}

	record, err := h.service.PhaseHistory(subSector, number)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, record)
}

func (h *CampaignHandler) GetPlanet(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_planet")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	report, err := h.service.PlanetReport(r.PathValue("name"))
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, report)
}

func (h *CampaignHandler) GetSystem(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_system")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	report, err := h.service.SystemReport(r.PathValue("name"))
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, report)
}

func (h *CampaignHandler) GetActiveSystems(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_active_systems")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	reports, err := h.service.ActiveSystemsReport()
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, reports)
}

// GetFactionReport serves per-faction activity, optionally ?faction=name.
func (h *CampaignHandler) GetFactionReport(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_faction_report")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	reports, err := h.service.FactionReport(campaign.Capitalize(r.URL.Query().Get("faction")))
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, reports)
}

func (h *CampaignHandler) ListPlanets(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_planets")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	names, err := h.service.PlanetNames(r.URL.Query().Get("q"))
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, names)
}

func (h *CampaignHandler) ListSystems(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_systems")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	names, err := h.service.SystemNames(r.URL.Query().Get("q"))
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, names)
}

func (h *CampaignHandler) ListFactions(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_factions")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	factions, err := h.service.Factions()
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, factions)
}
