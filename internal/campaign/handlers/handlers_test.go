package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"campaign-server/internal/auth"
	"campaign-server/internal/campaign"
	"campaign-server/internal/honor"
	"campaign-server/internal/middleware"
	"campaign-server/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
factions: [Red, Blue]
active: {sector: Alpha, sub_sector: North}
sectors:
  - name: Alpha
    sub_sectors:
      - name: North
        systems:
          - name: Hub
            planets: [Core, Ring]
      - name: South
        systems:
          - name: Deep
            planets: [Abyss]
honor_keywords: [Duel, Siege]
`

func newTestHandler(t *testing.T) *CampaignHandler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	seed, err := campaign.ParseSeed([]byte(seedYAML))
	require.NoError(t, err)
	repo := storage.NewFileRepository(filepath.Join(t.TempDir(), "data.json"), logger)
	store := campaign.Open(context.Background(), repo, seed, logger)
	drawer := honor.NewDrawer(honor.MatchSubset, 1, nil, logger)
	return NewCampaignHandler(campaign.NewService(store, drawer, logger))
}

func withClaims(r *http.Request, role string) *http.Request {
	claims := &auth.Claims{DiscordID: "7", Username: "tester", Role: role}
	return r.WithContext(context.WithValue(r.Context(), middleware.UserContextKey, claims))
}

type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t)
	tests := []struct {
		method  string
		handler http.HandlerFunc
	}{
		{http.MethodPost, h.GetPhase},
		{http.MethodDelete, h.GetPlanet},
		{http.MethodGet, h.RecordBattle},
		{http.MethodGet, h.ClosePhase},
		{http.MethodPost, h.SetSystemRule},
		{http.MethodGet, h.DrawHonor},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		tt.handler(rec, httptest.NewRequest(tt.method, "/", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestRecordBattleHandler(t *testing.T) {
	h := newTestHandler(t)

	body := `{"planet": "Core", "winner": "Red", "choice": "Blue", "participants": ["Red", "Blue"]}`
	req := withClaims(httptest.NewRequest(http.MethodPost, "/api/battles", strings.NewReader(body)), auth.RolePlayer)
	rec := httptest.NewRecorder()
	h.RecordBattle(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var m campaign.Mutation[campaign.BattleResult]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
	assert.True(t, m.Persisted)
	assert.Equal(t, "Hub", m.Result.System)
	assert.Equal(t, 3, m.Result.PointsDelta["Red"])

	t.Run("rejected battle", func(t *testing.T) {
		body := `{"planet": "Core", "winner": "Green", "choice": "Red", "participants": ["Red", "Blue"]}`
		rec := httptest.NewRecorder()
		h.RecordBattle(rec, withClaims(httptest.NewRequest(http.MethodPost, "/api/battles", strings.NewReader(body)), auth.RolePlayer))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_winner", decodeError(t, rec).Reason)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.RecordBattle(rec, withClaims(httptest.NewRequest(http.MethodPost, "/api/battles", strings.NewReader("{")), auth.RolePlayer))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestFactionNamesAreCaseInsensitive(t *testing.T) {
	h := newTestHandler(t)
	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.RecordBattle(rec, withClaims(httptest.NewRequest(http.MethodPost, "/api/battles", strings.NewReader(body)), auth.RolePlayer))
		return rec
	}

	rec := post(`{"planet": "Core", "winner": "red", "choice": "blue", "participants": ["red", "BLUE"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var m campaign.Mutation[campaign.BattleResult]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
	assert.Equal(t, "Red", m.Result.Winner)
	assert.Equal(t, campaign.Faction("Blue"), m.Result.Choice)
	assert.Equal(t, map[campaign.Faction]int{"Red": 3, "Blue": 1}, m.Result.PointsDelta)

	rec = post(`{"planet": "Ring", "winner": "egalite", "choice": "red", "participants": ["red", "blue"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	m = campaign.Mutation[campaign.BattleResult]{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
	assert.Equal(t, campaign.TieMarker, m.Result.Winner)
	assert.Equal(t, map[campaign.Faction]int{"Red": 2, "Blue": 2}, m.Result.PointsDelta)

	t.Run("stats override", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/admin/stats", strings.NewReader(`{"planet": "Core", "faction": "bLUE", "points": 7}`))
		h.ModifyStats(rec, withClaims(req, auth.RoleAdmin))
		require.Equal(t, http.StatusOK, rec.Code)

		var m campaign.Mutation[campaign.StatsOverrideResult]
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
		assert.Equal(t, campaign.Faction("Blue"), m.Result.Faction)
		assert.Equal(t, 7, m.Result.After.Points)
	})

	t.Run("faction report", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.GetFactionReport(rec, httptest.NewRequest(http.MethodGet, "/api/reports/factions?faction=red", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var reports []campaign.FactionReport
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&reports))
		require.Len(t, reports, 1)
		assert.Equal(t, campaign.Faction("Red"), reports[0].Faction)
		assert.Equal(t, 2, reports[0].LifetimeBattles)
	})
}

func TestAdminHandlersCheckRole(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ClosePhase(rec, withClaims(httptest.NewRequest(http.MethodPost, "/api/admin/phase/close", nil), auth.RolePlayer))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ClosePhase(rec, withClaims(httptest.NewRequest(http.MethodPost, "/api/admin/phase/close", nil), auth.RoleAdmin))
	require.Equal(t, http.StatusOK, rec.Code)

	var m campaign.Mutation[campaign.PhaseTransition]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
	assert.Equal(t, 2, m.Result.Current.Number)
}

func TestClosePhaseRotation(t *testing.T) {
	h := newTestHandler(t)
	closePhase := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/admin/phase/close", strings.NewReader(body))
		h.ClosePhase(rec, withClaims(req, auth.RoleAdmin))
		return rec
	}

	require.Equal(t, http.StatusOK, closePhase("").Code)
	require.Equal(t, http.StatusOK, closePhase("").Code)

	rec := closePhase("")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "sub_sector_rotation_required", decodeError(t, rec).Reason)

	rec = closePhase(`{"new_sub_sector": "South"}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSystemAdminHandlers(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/admin/systems/Hub/rule", strings.NewReader(`{"pv_thresholds": [1, 2], "bonus_threshold": 4, "planets": {"Core": 3}}`))
	req.SetPathValue("name", "Hub")
	h.SetSystemRule(rec, withClaims(req, auth.RoleAdmin))
	require.Equal(t, http.StatusOK, rec.Code)

	var rule campaign.Mutation[campaign.SystemReport]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rule))
	assert.Equal(t, []int{1, 2}, rule.Result.Rule.PVThresholds)
	assert.Equal(t, 3, rule.Result.Planets[0].Weight)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/api/admin/systems/Hub/active", strings.NewReader(`{}`))
	req.SetPathValue("name", "Hub")
	h.SetSystemActive(rec, withClaims(req, auth.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "active is required")

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/admin/systems/Hub/planets", strings.NewReader(`{"name": "Core"}`))
	req.SetPathValue("name", "Hub")
	h.AddPlanet(rec, withClaims(req, auth.RoleAdmin))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReadHandlers(t *testing.T) {
	h := newTestHandler(t)

	t.Run("planet", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/planets/Ring", nil)
		req.SetPathValue("name", "Ring")
		h.GetPlanet(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var report campaign.PlanetReport
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
		assert.Equal(t, "Hub", report.System)
	})

	t.Run("unknown planet", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/planets/Nowhere", nil)
		req.SetPathValue("name", "Nowhere")
		h.GetPlanet(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "unknown_planet", decodeError(t, rec).Reason)
	})

	t.Run("autocomplete", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ListPlanets(rec, httptest.NewRequest(http.MethodGet, "/api/planets?q=r", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var names []string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&names))
		assert.Equal(t, []string{"Core", "Ring"}, names)
	})

	t.Run("phase history", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.GetPhaseHistory(rec, httptest.NewRequest(http.MethodGet, "/api/phase/history", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"phases": []}`, rec.Body.String())

		rec = httptest.NewRecorder()
		h.GetPhaseHistory(rec, httptest.NewRequest(http.MethodGet, "/api/phase/history?phase=zero", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = httptest.NewRecorder()
		h.GetPhaseHistory(rec, httptest.NewRequest(http.MethodGet, "/api/phase/history?phase=1", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("faction report", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.GetFactionReport(rec, httptest.NewRequest(http.MethodGet, "/api/reports/factions?faction=Orange", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHonorHandlers(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ListHonorKeywords(rec, httptest.NewRequest(http.MethodGet, "/api/honor/keywords?q=DU", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["Duel"]`, rec.Body.String())

	body := `{"keywords": ["Duel"], "threads": [{"id": "9", "title": "Blades", "tags": ["Duel"]}]}`
	rec = httptest.NewRecorder()
	h.DrawHonor(rec, withClaims(httptest.NewRequest(http.MethodPost, "/api/honor/draw", strings.NewReader(body)), auth.RolePlayer))
	require.Equal(t, http.StatusOK, rec.Code)
	var res honor.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "9", res.Thread.ID)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/admin/honor/keywords", strings.NewReader(`{"boards": [["Raid"], ["Ambush", "Raid"]]}`))
	h.RefreshHonorKeywords(rec, withClaims(req, auth.RoleAdmin))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"result": ["Ambush", "Raid"], "persisted": true}`, rec.Body.String())
}
