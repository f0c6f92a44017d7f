package http

import (
	"net/http"

	"github.com/craftboard/craftboard/internal/craftboard/service"
	"github.com/craftboard/craftboard/pkg/boardapi"
	"github.com/craftboard/craftboard/pkg/httpx"
	"github.com/craftboard/craftboard/pkg/slogx"
)

type LinkStatusHandler struct {
	LinkService *service.LinkService
}

// ServeHTTP reports whether a Minecraft UUID is linked. The plugin calls
// this on player join; an unlinked player is a normal 200 response.
func (h *LinkStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uuid := r.URL.Query().Get("uuid")
	if uuid == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "uuid query parameter is required")
		return
	}

	link, linked, err := h.LinkService.Status(ctx, uuid)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to read link status", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to read link status")
		return
	}

	if !linked {
		httpx.WriteJSON(w, http.StatusOK, boardapi.LinkStatusResponse{Linked: false})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, boardapi.LinkStatusResponse{
		Linked:   true,
		Username: link.MinecraftUsername,
		UserID:   link.OwnerID,
	})
}
