package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/api/middleware"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/api/shared"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/service"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/store"
)

// ItemHandler handles the item CRUD, favorite, and listing endpoints.
type ItemHandler struct {
	items service.ItemService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(items service.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

// Create handles POST /api/items.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentity(r)

	var req CreateItemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, "Validation error: "+err.Error())
		return
	}

	view, err := h.items.Create(r.Context(), caller, req.Item.Title, req.Item.Description, req.Item.Image, req.Item.TagList)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, ItemResponse{Item: NewItemPayload(view)})
}

// Get handles GET /api/items/{slug}.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.items.Get(r.Context(), middleware.GetIdentity(r), chi.URLParam(r, "slug"))
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ItemResponse{Item: NewItemPayload(view)})
}

// Update handles PUT /api/items/{slug}.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentity(r)

	var req UpdateItemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	view, err := h.items.Update(r.Context(), caller, chi.URLParam(r, "slug"), service.ItemUpdate{
		Title:       req.Item.Title,
		Description: req.Item.Description,
		Image:       req.Item.Image,
		TagList:     req.Item.TagList,
	})
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ItemResponse{Item: NewItemPayload(view)})
}

// Delete handles DELETE /api/items/{slug}.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentity(r)

	if err := h.items.Delete(r.Context(), caller, chi.URLParam(r, "slug")); err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Favorite handles POST /api/items/{slug}/favorite.
func (h *ItemHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentity(r)

	view, err := h.items.Favorite(r.Context(), caller, chi.URLParam(r, "slug"))
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ItemResponse{Item: NewItemPayload(view)})
}

// Unfavorite handles DELETE /api/items/{slug}/favorite.
func (h *ItemHandler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentity(r)

	view, err := h.items.Unfavorite(r.Context(), caller, chi.URLParam(r, "slug"))
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ItemResponse{Item: NewItemPayload(view)})
}

// List handles GET /api/items with tag, seller, favorited, limit, and offset
// query parameters.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.ItemFilter{
		Tag:         query.Get("tag"),
		Seller:      query.Get("seller"),
		FavoritedBy: query.Get("favorited"),
		Limit:       queryInt(query.Get("limit")),
		Offset:      queryInt(query.Get("offset")),
	}

	views, total, err := h.items.List(r.Context(), middleware.GetIdentity(r), filter)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewItemsResponse(views, total))
}

// Feed handles GET /api/items/feed.
func (h *ItemHandler) Feed(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentity(r)
	query := r.URL.Query()

	views, total, err := h.items.Feed(r.Context(), caller, queryInt(query.Get("limit")), queryInt(query.Get("offset")))
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewItemsResponse(views, total))
}

// Tags handles GET /api/tags.
func (h *ItemHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.items.Tags(r.Context())
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TagsResponse{Tags: tags})
}

// queryInt parses a query parameter as an int, treating absent or malformed
// values as zero so the service applies its defaults.
func queryInt(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
