package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/api/middleware"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/api/shared"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/service"
)

// CommentHandler handles the item comment endpoints.
type CommentHandler struct {
	comments service.CommentService
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(comments service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// Add handles POST /api/items/{slug}/comments.
func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentity(r)

	var req AddCommentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, "Validation error: "+err.Error())
		return
	}

	view, err := h.comments.Add(r.Context(), caller, chi.URLParam(r, "slug"), req.Comment.Body)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, CommentResponse{Comment: NewCommentPayload(view)})
}

// List handles GET /api/items/{slug}/comments.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.comments.List(r.Context(), middleware.GetIdentity(r), chi.URLParam(r, "slug"))
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewCommentsResponse(views))
}

// Delete handles DELETE /api/items/{slug}/comments/{id}.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentity(r)

	commentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Comment not found")
		return
	}

	if err := h.comments.Delete(r.Context(), caller, chi.URLParam(r, "slug"), commentID); err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
