package e2e_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	httpapi "github.com/craftboard/craftboard/internal/craftboard/http"
	"github.com/craftboard/craftboard/internal/craftboard/service"
	"github.com/craftboard/craftboard/internal/craftboard/store/drivers/memory"
	"github.com/craftboard/craftboard/pkg/jwtx"
	"github.com/craftboard/craftboard/pkg/mcauth"
	"github.com/craftboard/craftboard/pkg/slogx"
)

const frontendURL = "http://frontend.local"

// testEnv is one running craftboard instance over the in-memory store, with
// a real EdDSA verifier and a token signer for minting test credentials.
type testEnv struct {
	baseURL string
	router  *httpapi.Router
	signKey ed25519.PrivateKey
}

// newEnv stands up the full HTTP stack. authorities may be nil when the test
// never touches the identity exchange.
func newEnv(t *testing.T, authorities *fakeAuthorities) *testEnv {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	verifier, err := jwtx.NewEdDSAVerifier(pemKey, "craftboard-web")
	require.NoError(t, err)

	st := memory.NewStore()
	router := httpapi.NewRouter(verifier, "e2e", frontendURL, st, slogx.Discard())
	router.LinkService = &service.LinkService{Store: st}
	router.CatalogService = &service.CatalogService{Store: st}

	authCfg := mcauth.Config{
		ClientID:    "client-id",
		RedirectURI: "http://localhost/v1/auth/minecraft/callback",
	}
	if authorities != nil {
		authCfg = authorities.config()
	}
	router.AuthClient = mcauth.NewClient(authCfg)
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{
		baseURL: server.URL,
		router:  router,
		signKey: priv,
	}
}

// signToken mints a web-session token the verifier accepts.
func (env *testEnv) signToken(t *testing.T, subject, username string, scopes ...string) string {
	t.Helper()

	claims := jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "craftboard-web",
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Username: username,
		Scopes:   scopes,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(env.signKey)
	require.NoError(t, err)
	return token
}

// doAuthed performs an authenticated request and decodes a JSON response.
func (env *testEnv) doAuthed(t *testing.T, method, path, token string, out any) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), method, env.baseURL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// fakeAuthorities fakes the Microsoft, Xbox and Minecraft endpoints of the
// identity exchange in a single test server.
type fakeAuthorities struct {
	server *httptest.Server
}

func newFakeAuthorities(t *testing.T) *fakeAuthorities {
	t.Helper()

	f := &fakeAuthorities{}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"access_token": "ms-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("POST /xbl", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"Token": "xbl-token",
			"DisplayClaims": map[string]any{
				"xui": []map[string]string{{"uhs": "user-hash"}},
			},
		})
	})
	mux.HandleFunc("POST /xsts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"Token": "xsts-token",
			"DisplayClaims": map[string]any{
				"xui": []map[string]string{{"uhs": "user-hash"}},
			},
		})
	})
	mux.HandleFunc("POST /mc-login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"access_token": "mc-access-token"})
	})
	mux.HandleFunc("GET /profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{
			"id":   "069a79f4-44e9-4726-a5be-fca90e38aaf5",
			"name": "Notch",
		})
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAuthorities) config() mcauth.Config {
	base := f.server.URL
	return mcauth.Config{
		ClientID:            "client-id",
		ClientSecret:        "client-secret",
		RedirectURI:         "http://localhost/v1/auth/minecraft/callback",
		AuthURL:             base + "/authorize",
		TokenURL:            base + "/token",
		XboxUserAuthURL:     base + "/xbl",
		XSTSAuthURL:         base + "/xsts",
		MinecraftLoginURL:   base + "/mc-login",
		MinecraftProfileURL: base + "/profile",
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// noRedirectClient returns a client that surfaces 3xx responses instead of
// following them.
func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
