// Package mcauth implements the delegated identity exchange that turns a
// Microsoft OAuth2 authorization code into a Minecraft profile. The chain is
// fixed: Microsoft token, Xbox Live user token, XSTS token, Minecraft
// services token, then the profile fetch. Every step depends on the previous
// one, so a failure anywhere aborts the whole exchange.
package mcauth

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Default authority endpoints. Overridable in Config so tests can point the
// client at local servers.
const (
	DefaultAuthURL             = "https://login.microsoftonline.com/consumers/oauth2/v2.0/authorize"
	DefaultTokenURL            = "https://login.microsoftonline.com/consumers/oauth2/v2.0/token"
	DefaultXboxUserAuthURL     = "https://user.auth.xboxlive.com/user/authenticate"
	DefaultXSTSAuthURL         = "https://xsts.auth.xboxlive.com/xsts/authorize"
	DefaultMinecraftLoginURL   = "https://api.minecraftservices.com/authentication/login_with_xbox"
	DefaultMinecraftProfileURL = "https://api.minecraftservices.com/minecraft/profile"
)

// DefaultScopes requested at the Microsoft consent page.
var DefaultScopes = []string{"XboxLive.Signin", "offline_access", "openid", "profile", "email"}

// Config carries the client credentials and authority endpoints.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string

	AuthURL             string
	TokenURL            string
	XboxUserAuthURL     string
	XSTSAuthURL         string
	MinecraftLoginURL   string
	MinecraftProfileURL string

	// HTTPClient is used for every hop. Defaults to a client with a 30s
	// timeout; there is deliberately no retry policy.
	HTTPClient *http.Client
}

// Profile is the normalized terminal output of a successful exchange.
// It is never persisted by this package.
type Profile struct {
	UUID string `json:"id"`
	Name string `json:"name"`
}

// Client performs the exchange chain against the configured authorities.
type Client struct {
	cfg   Config
	oauth *oauth2.Config
	http  *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.XboxUserAuthURL == "" {
		cfg.XboxUserAuthURL = DefaultXboxUserAuthURL
	}
	if cfg.XSTSAuthURL == "" {
		cfg.XSTSAuthURL = DefaultXSTSAuthURL
	}
	if cfg.MinecraftLoginURL == "" {
		cfg.MinecraftLoginURL = DefaultMinecraftLoginURL
	}
	if cfg.MinecraftProfileURL == "" {
		cfg.MinecraftProfileURL = DefaultMinecraftProfileURL
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		http: httpClient,
	}
}

// AuthCodeURL builds the consent-page URL the browser is redirected to.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// withHTTPClient makes the oauth2 package use our transport for hop 1.
func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.http)
}
