package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/api/middleware"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/api/shared"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/service"
)

// ProfileHandler handles public profile and follow endpoints.
type ProfileHandler struct {
	users service.UserService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(users service.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// Get handles GET /api/profiles/{username}.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	viewer := middleware.GetIdentity(r)

	profile, err := h.users.GetProfile(r.Context(), viewer, username)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewProfileResponse(profile))
}

// Follow handles POST /api/profiles/{username}/follow.
func (h *ProfileHandler) Follow(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	caller := middleware.GetIdentity(r)

	profile, err := h.users.Follow(r.Context(), caller, username)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewProfileResponse(profile))
}

// Unfollow handles DELETE /api/profiles/{username}/follow.
func (h *ProfileHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	caller := middleware.GetIdentity(r)

	profile, err := h.users.Unfollow(r.Context(), caller, username)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewProfileResponse(profile))
}
