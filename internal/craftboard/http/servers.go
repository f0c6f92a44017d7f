package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/craftboard/craftboard/internal/craftboard/domain"
	"github.com/craftboard/craftboard/internal/craftboard/service"
	"github.com/craftboard/craftboard/pkg/boardapi"
	"github.com/craftboard/craftboard/pkg/httpx"
	"github.com/craftboard/craftboard/pkg/slogx"
)

// ServersHandler serves the public catalogue and voting endpoints.
type ServersHandler struct {
	CatalogService *service.CatalogService
}

func (h *ServersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	listings, err := h.CatalogService.ListServers(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list servers", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list servers")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, listings)
}

func (h *ServersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	listing, err := h.CatalogService.GetServer(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrServerNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Server not found")
			return
		}
		slogx.FromContext(ctx).Error("failed to get server", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to get server")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, listing)
}

func (h *ServersHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := httpx.UserID(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	total, err := h.CatalogService.CastVote(ctx, r.PathValue("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrServerNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Server not found")
		case errors.Is(err, service.ErrVoteCooldown):
			httpx.WriteError(w, http.StatusTooManyRequests, "vote_cooldown", "You have already voted for this server recently")
		default:
			slogx.FromContext(ctx).Error("failed to cast vote", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to cast vote")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, boardapi.VoteResponse{Success: true, Votes: total})
}

func (h *ServersHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := int64(10)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 || parsed > 100 {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	top, err := h.CatalogService.Leaderboard(ctx, limit)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to read leaderboard", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to read leaderboard")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, top)
}

func (h *ServersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.Server
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	server, err := h.CatalogService.AddServer(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidServer):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Server name and address are required")
		case errors.Is(err, service.ErrServerConflict):
			httpx.WriteError(w, http.StatusConflict, "conflict", "Server already exists")
		default:
			slogx.FromContext(ctx).Error("failed to create server", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create server")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, server)
}
