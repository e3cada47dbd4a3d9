package handler

import (
	"net/http"

	"github.com/guildhall/arena/internal/cache"
	"github.com/guildhall/arena/internal/model"
)

// CacheHandler handles cache administration endpoints. Routes using this
// handler sit behind the admin middleware.
type CacheHandler struct {
	cache cache.Cache
}

// NewCacheHandler creates a new cache handler
func NewCacheHandler(c cache.Cache) *CacheHandler {
	if c == nil {
		c = cache.NewNoop()
	}
	return &CacheHandler{cache: c}
}

// Stats handles GET /v1/admin/cache/stats
func (h *CacheHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.cache.Stats(r.Context())
	if err != nil {
		WriteError(w, model.NewInternalError("failed to read cache statistics"))
		return
	}

	WriteData(w, http.StatusOK, stats, nil)
}

// Flush handles DELETE /v1/admin/cache?pattern=...
func (h *CacheHandler) Flush(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		pattern = "*"
	}

	deleted, err := h.cache.DeletePattern(r.Context(), pattern)
	if err != nil {
		WriteError(w, model.NewInternalError("failed to flush cache"))
		return
	}

	WriteData(w, http.StatusOK, map[string]interface{}{
		"pattern": pattern,
		"deleted": deleted,
	}, nil)
}
