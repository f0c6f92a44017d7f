package http

import (
	"net/http"

	"github.com/craftboard/craftboard/internal/craftboard/service"
	"github.com/craftboard/craftboard/pkg/boardapi"
	"github.com/craftboard/craftboard/pkg/httpx"
	"github.com/craftboard/craftboard/pkg/slogx"
)

type LinkCodeHandler struct {
	LinkService *service.LinkService
}

// ServeHTTP issues a fresh linking code for the authenticated web user. The
// code is shown on the dashboard and typed into the game client.
func (h *LinkCodeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserID(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	code, expiresAt, err := h.LinkService.IssueCode(ctx, userID)
	if err != nil {
		log.Error("failed to issue link code", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to generate link code")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, boardapi.LinkCodeResponse{
		Success:   true,
		Code:      code,
		ExpiresAt: expiresAt.UnixMilli(),
	})
}
