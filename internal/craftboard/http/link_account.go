package http

import (
	"net/http"
	"time"

	"github.com/craftboard/craftboard/internal/craftboard/service"
	"github.com/craftboard/craftboard/pkg/boardapi"
	"github.com/craftboard/craftboard/pkg/httpx"
	"github.com/craftboard/craftboard/pkg/slogx"
)

// LinkAccountHandler exposes the authenticated user's own link for reading
// and removal.
type LinkAccountHandler struct {
	LinkService *service.LinkService
}

func (h *LinkAccountHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := httpx.UserID(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	link, found, err := h.LinkService.LinkedAccount(ctx, userID)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to read account link", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to read account link")
		return
	}
	if !found {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "No Minecraft account is linked")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, boardapi.LinkResponse{
		MinecraftUUID:     link.MinecraftUUID,
		MinecraftUsername: link.MinecraftUsername,
		LinkedAt:          link.LinkedAt.UTC().Format(time.RFC3339),
	})
}

func (h *LinkAccountHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := httpx.UserID(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	removed, err := h.LinkService.Unlink(ctx, userID)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to unlink account", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to unlink account")
		return
	}
	if !removed {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "No Minecraft account is linked")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
