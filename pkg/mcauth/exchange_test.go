package mcauth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeAuthorities stands in for all five upstream endpoints and counts the
// calls each one receives.
type fakeAuthorities struct {
	srv *httptest.Server

	tokenCalls   atomic.Int64
	xblCalls     atomic.Int64
	xstsCalls    atomic.Int64
	mcLoginCalls atomic.Int64
	profileCalls atomic.Int64

	failAt      int // stage to fail at, 0 for none
	omitUserHash bool
}

func newFakeAuthorities(t *testing.T) *fakeAuthorities {
	t.Helper()

	f := &fakeAuthorities{}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		if f.failAt == StageMicrosoftToken {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"ms-token","token_type":"Bearer","expires_in":3600}`)
	})

	mux.HandleFunc("POST /xbl/authenticate", func(w http.ResponseWriter, r *http.Request) {
		f.xblCalls.Add(1)
		if f.failAt == StageXboxUserToken {
			http.Error(w, "xbl down", http.StatusUnauthorized)
			return
		}

		var body struct {
			Properties struct {
				RpsTicket string `json:"RpsTicket"`
			} `json:"Properties"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "d=ms-token", body.Properties.RpsTicket)

		resp := map[string]any{"Token": "xbl-token"}
		if !f.omitUserHash {
			resp["DisplayClaims"] = map[string]any{"xui": []map[string]string{{"uhs": "user-hash"}}}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("POST /xsts/authorize", func(w http.ResponseWriter, r *http.Request) {
		f.xstsCalls.Add(1)
		if f.failAt == StageXSTSToken {
			http.Error(w, "xsts denied", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"Token":"xsts-token"}`)
	})

	mux.HandleFunc("POST /mc/login", func(w http.ResponseWriter, r *http.Request) {
		f.mcLoginCalls.Add(1)
		if f.failAt == StageMinecraftToken {
			http.Error(w, "login rejected", http.StatusForbidden)
			return
		}

		var body struct {
			IdentityToken string `json:"identityToken"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "XBL3.0 x=user-hash;xsts-token", body.IdentityToken)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"mc-token"}`)
	})

	mux.HandleFunc("GET /mc/profile", func(w http.ResponseWriter, r *http.Request) {
		f.profileCalls.Add(1)
		if f.failAt == StageProfile {
			http.Error(w, "no profile", http.StatusNotFound)
			return
		}
		require.Equal(t, "Bearer mc-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"069a79f4-44e9-4726-a5be-fca90e38aaf5","name":"Notch"}`)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAuthorities) client() *Client {
	return NewClient(Config{
		ClientID:            "client-id",
		ClientSecret:        "client-secret",
		RedirectURI:         "http://localhost/callback",
		TokenURL:            f.srv.URL + "/oauth/token",
		AuthURL:             f.srv.URL + "/oauth/authorize",
		XboxUserAuthURL:     f.srv.URL + "/xbl/authenticate",
		XSTSAuthURL:         f.srv.URL + "/xsts/authorize",
		MinecraftLoginURL:   f.srv.URL + "/mc/login",
		MinecraftProfileURL: f.srv.URL + "/mc/profile",
	})
}

func TestExchangeHappyPath(t *testing.T) {
	t.Parallel()

	f := newFakeAuthorities(t)
	profile, err := f.client().Exchange(t.Context(), "auth-code")
	require.NoError(t, err)
	require.Equal(t, "069a79f4-44e9-4726-a5be-fca90e38aaf5", profile.UUID)
	require.Equal(t, "Notch", profile.Name)

	// Each hop runs exactly once.
	require.EqualValues(t, 1, f.tokenCalls.Load())
	require.EqualValues(t, 1, f.xblCalls.Load())
	require.EqualValues(t, 1, f.xstsCalls.Load())
	require.EqualValues(t, 1, f.mcLoginCalls.Load())
	require.EqualValues(t, 1, f.profileCalls.Load())
}

func TestExchangeStage1FailureStopsChain(t *testing.T) {
	t.Parallel()

	f := newFakeAuthorities(t)
	f.failAt = StageMicrosoftToken

	_, err := f.client().Exchange(t.Context(), "bad-code")

	var exchErr *ExchangeError
	require.ErrorAs(t, err, &exchErr)
	require.Equal(t, StageMicrosoftToken, exchErr.Stage)

	// Later hops must never be called.
	require.EqualValues(t, 0, f.xblCalls.Load())
	require.EqualValues(t, 0, f.xstsCalls.Load())
	require.EqualValues(t, 0, f.mcLoginCalls.Load())
	require.EqualValues(t, 0, f.profileCalls.Load())
}

func TestExchangeFailuresCarryStage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		failAt int
		status int
	}{
		{"xbox user token", StageXboxUserToken, http.StatusUnauthorized},
		{"xsts token", StageXSTSToken, http.StatusForbidden},
		{"minecraft token", StageMinecraftToken, http.StatusForbidden},
		{"profile", StageProfile, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFakeAuthorities(t)
			f.failAt = tc.failAt

			_, err := f.client().Exchange(t.Context(), "auth-code")

			var exchErr *ExchangeError
			require.ErrorAs(t, err, &exchErr)
			require.Equal(t, tc.failAt, exchErr.Stage)
			require.Equal(t, tc.status, exchErr.Status)
		})
	}
}

func TestExchangeMissingUserHashIsFatal(t *testing.T) {
	t.Parallel()

	f := newFakeAuthorities(t)
	f.omitUserHash = true

	_, err := f.client().Exchange(t.Context(), "auth-code")

	var exchErr *ExchangeError
	require.ErrorAs(t, err, &exchErr)
	require.Equal(t, StageXSTSToken, exchErr.Stage)

	// The shape error is caught before the XSTS hop fires.
	require.EqualValues(t, 0, f.xstsCalls.Load())
}

func TestAuthCodeURL(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{
		ClientID:    "client-id",
		RedirectURI: "https://craftboard.example/api/callback",
	})

	u := c.AuthCodeURL("csrf-state")
	require.Contains(t, u, DefaultAuthURL)
	require.Contains(t, u, "client_id=client-id")
	require.Contains(t, u, "state=csrf-state")
	require.Contains(t, u, "XboxLive.Signin")
}
