package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/craftboard/craftboard/internal/craftboard/service"
	"github.com/craftboard/craftboard/pkg/boardapi"
	"github.com/craftboard/craftboard/pkg/httpx"
	"github.com/craftboard/craftboard/pkg/slogx"
)

type LinkVerifyHandler struct {
	LinkService *service.LinkService
}

// ServeHTTP consumes a linking code on behalf of the game-server plugin.
// Protocol rejections come back as 400 with Success=false and a
// player-facing message; only infrastructure failures produce a 500.
func (h *LinkVerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req boardapi.VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVerifyFailure(w, "Invalid request body")
		return
	}

	if req.UUID == "" || req.Username == "" {
		writeVerifyFailure(w, "uuid and username are required")
		return
	}

	result, err := h.LinkService.VerifyCode(ctx, req.Code, req.UUID, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCodeFormat):
			writeVerifyFailure(w, "Code must be exactly 6 digits")
		case errors.Is(err, service.ErrCodeNotFound):
			writeVerifyFailure(w, "Invalid code")
		case errors.Is(err, service.ErrCodeExpired):
			writeVerifyFailure(w, "Code has expired, please generate a new one")
		case errors.Is(err, service.ErrCodeAlreadyUsed):
			writeVerifyFailure(w, "Code has already been used")
		case errors.Is(err, service.ErrUUIDLinkedElsewhere):
			writeVerifyFailure(w, "This Minecraft account is already linked to another user")
		case errors.Is(err, service.ErrOwnerAlreadyLinked):
			writeVerifyFailure(w, "This account is already linked to a different Minecraft account")
		default:
			log.Error("failed to verify link code", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, boardapi.VerifyCodeResponse{
				Success: false,
				Message: "Internal error, please try again later",
			})
		}
		return
	}

	message := "Account linked successfully"
	if result.AlreadyLinked {
		message = "Account already linked"
	}
	httpx.WriteJSON(w, http.StatusOK, boardapi.VerifyCodeResponse{
		Success: true,
		Message: message,
		UserID:  result.OwnerID,
	})
}

func writeVerifyFailure(w http.ResponseWriter, message string) {
	httpx.WriteJSON(w, http.StatusBadRequest, boardapi.VerifyCodeResponse{
		Success: false,
		Message: message,
	})
}
