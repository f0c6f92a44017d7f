package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/craftboard/craftboard/internal/craftboard/service"
	"github.com/craftboard/craftboard/internal/craftboard/store"
	"github.com/craftboard/craftboard/pkg/httpx"
	"github.com/craftboard/craftboard/pkg/jwtx"
	"github.com/craftboard/craftboard/pkg/mcauth"
	"github.com/craftboard/craftboard/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	frontendURL    string
	LinkService    *service.LinkService
	CatalogService *service.CatalogService
	AuthClient     *mcauth.Client
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion, frontendURL string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		frontendURL:  frontendURL,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerMinecraftAuth()
	r.registerLinking()
	r.registerCatalog()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerMinecraftAuth() {
	h := &MinecraftAuthHandler{
		AuthClient:  r.AuthClient,
		FrontendURL: r.frontendURL,
	}

	// GET /login - lenient rate limit (just a redirect to the consent page)
	r.Mux.Handle("GET /v1/auth/minecraft/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// GET /callback - moderate rate limit by IP (triggers the upstream
	// exchange chain, so it must not be hammered)
	r.Mux.Handle("GET /v1/auth/minecraft/callback",
		httpx.Chain(http.HandlerFunc(h.HandleCallback),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerLinking() {
	codeHandler := &LinkCodeHandler{LinkService: r.LinkService}
	verifyHandler := &LinkVerifyHandler{LinkService: r.LinkService}
	statusHandler := &LinkStatusHandler{LinkService: r.LinkService}
	accountHandler := &LinkAccountHandler{LinkService: r.LinkService}

	// GET /link-code - moderate rate limit by user (authenticated web users)
	securedCode := httpx.Chain(codeHandler,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	r.Mux.Handle("GET /v1/minecraft/link-code", securedCode)

	// POST /verify-code - strict rate limit by IP (called by the game-server
	// plugin; brute forcing 6-digit codes must be expensive)
	r.Mux.Handle("POST /v1/minecraft/verify-code",
		httpx.Chain(verifyHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /link-status - lenient rate limit (plugin polls on player join)
	r.Mux.Handle("GET /v1/minecraft/link-status",
		httpx.Chain(statusHandler,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// GET|DELETE /link - authenticated self-service endpoints
	securedGet := httpx.Chain(http.HandlerFunc(accountHandler.HandleGet),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(httpx.LenientLimit),
	)
	securedDelete := httpx.Chain(http.HandlerFunc(accountHandler.HandleDelete),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	r.Mux.Handle("GET /v1/minecraft/link", securedGet)
	r.Mux.Handle("DELETE /v1/minecraft/link", securedDelete)
}

func (r *Router) registerCatalog() {
	h := &ServersHandler{CatalogService: r.CatalogService}

	// Public catalogue reads - high limits
	r.Mux.Handle("GET /v1/servers",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /v1/servers/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /v1/leaderboard",
		httpx.Chain(http.HandlerFunc(h.HandleLeaderboard),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	// POST /servers/{id}/vote - authenticated, moderate limit by user
	securedVote := httpx.Chain(http.HandlerFunc(h.HandleVote),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	r.Mux.Handle("POST /v1/servers/{id}/vote", securedVote)

	// POST /servers - Create server (requires servers:write) - moderate limit
	securedCreate := httpx.Chain(http.HandlerFunc(h.HandleCreate),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("servers:write"),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	r.Mux.Handle("POST /v1/servers", securedCreate)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may
	// poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
