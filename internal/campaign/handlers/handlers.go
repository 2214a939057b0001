package handlers

import (
	"encoding/json"
	"net/http"

	"campaign-server/internal/campaign"
	"campaign-server/internal/middleware"
	"campaign-server/internal/shared/errors"
)

const maxBodyBytes = 1 << 20

type CampaignHandler struct {
	service *campaign.Service
}

func NewCampaignHandler(service *campaign.Service) *CampaignHandler {
	return &CampaignHandler{service: service}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.WrapValidation("invalid JSON in request body", err)
	}
	return nil
}

// actorFromRequest turns the authenticated claims into a campaign actor.
// Unauthenticated requests yield an anonymous, non-admin actor.
func actorFromRequest(r *http.Request) campaign.Actor {
	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		return campaign.Actor{Name: "anonymous"}
	}
	return campaign.Actor{
		ID:    claims.DiscordID,
		Name:  claims.Username,
		Admin: claims.IsAdmin(),
	}
}
