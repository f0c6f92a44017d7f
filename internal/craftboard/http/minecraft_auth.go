package http

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/craftboard/craftboard/pkg/idx"
	"github.com/craftboard/craftboard/pkg/mcauth"
	"github.com/craftboard/craftboard/pkg/slogx"
)

const stateCookieName = "mc_auth_state"

// MinecraftAuthHandler drives the browser side of the delegated identity
// exchange. The login endpoint redirects to the Microsoft consent page; the
// callback runs the exchange chain and bounces the browser back to the
// frontend dashboard with the outcome in query parameters.
type MinecraftAuthHandler struct {
	AuthClient  *mcauth.Client
	FrontendURL string
}

func (h *MinecraftAuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := idx.New().String()

	// The state round-trips through a cookie so the callback can reject
	// forged redirects.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/v1/auth/minecraft",
		MaxAge:   int(10 * time.Minute / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.AuthClient.AuthCodeURL(state), http.StatusFound)
}

func (h *MinecraftAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectDashboard(w, r, url.Values{"error": {"no_code"}})
		return
	}

	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		log.Warn("callback state mismatch")
		h.redirectDashboard(w, r, url.Values{"error": {"auth_failed"}})
		return
	}

	profile, err := h.AuthClient.Exchange(ctx, code)
	if err != nil {
		var exchErr *mcauth.ExchangeError
		if errors.As(err, &exchErr) {
			log.Error("identity exchange failed",
				"stage", exchErr.Stage,
				"stage_name", exchErr.StageName(),
				"status", exchErr.Status,
			)
		} else {
			log.Error("identity exchange failed", "err", err)
		}
		h.redirectDashboard(w, r, url.Values{"error": {"auth_failed"}})
		return
	}

	log.Info("minecraft identity verified",
		"minecraft_uuid", profile.UUID,
		"minecraft_username", profile.Name,
	)

	h.redirectDashboard(w, r, url.Values{
		"verified": {"true"},
		"username": {profile.Name},
		"uuid":     {profile.UUID},
	})
}

func (h *MinecraftAuthHandler) redirectDashboard(w http.ResponseWriter, r *http.Request, params url.Values) {
	http.Redirect(w, r, h.FrontendURL+"/dashboard?"+params.Encode(), http.StatusFound)
}
