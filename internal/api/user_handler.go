package api

import (
	"log/slog"
	"net/http"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/api/middleware"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/api/shared"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/domain"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/service"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/service/auth"
)

// UserHandler handles registration, login, and current-user endpoints.
type UserHandler struct {
	users      service.UserService
	jwtService auth.JWTService
	logger     *slog.Logger
}

// NewUserHandler creates a new UserHandler with the given dependencies.
func NewUserHandler(users service.UserService, jwtService auth.JWTService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		users:      users,
		jwtService: jwtService,
		logger:     logger.With(slog.String("component", "user_handler")),
	}
}

// Register handles POST /api/users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, "Validation error: "+err.Error())
		return
	}

	user, err := h.users.Register(r.Context(), req.User.Username, req.User.Email, req.User.Password)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	h.respondWithToken(w, r, user, http.StatusCreated)
}

// Login handles POST /api/users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, "Validation error: "+err.Error())
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.User.Email, req.User.Password)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	h.respondWithToken(w, r, user, http.StatusOK)
}

// Current handles GET /api/user.
func (h *UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentity(r)
	if caller == nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.users.GetByID(r.Context(), caller.UserID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	h.respondWithToken(w, r, user, http.StatusOK)
}

// Update handles PUT /api/user.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentity(r)
	if caller == nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req UpdateUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, "Validation error: "+err.Error())
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), caller, service.ProfileUpdate{
		Username: req.User.Username,
		Email:    req.User.Email,
		Bio:      req.User.Bio,
		Image:    req.User.Image,
		Password: req.User.Password,
	})
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	h.respondWithToken(w, r, user, http.StatusOK)
}

// respondWithToken mints a fresh session token for the user and writes the
// user envelope.
func (h *UserHandler) respondWithToken(w http.ResponseWriter, r *http.Request, user *domain.User, status int) {
	token, err := h.jwtService.GenerateToken(r.Context(), user.ID, user.Role)
	if err != nil {
		h.logger.Error("failed to generate token", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}
	shared.RespondWithJSON(w, r, status, NewUserResponse(user, token))
}
