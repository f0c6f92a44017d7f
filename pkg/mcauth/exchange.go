package mcauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

type xboxTokenResponse struct {
	Token         string `json:"Token"`
	DisplayClaims struct {
		XUI []struct {
			UHS string `json:"uhs"`
		} `json:"xui"`
	} `json:"DisplayClaims"`
}

type minecraftTokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Exchange runs the full five-stage chain and returns the normalized
// Minecraft profile. No retries, no partial results: the first failing hop
// aborts everything.
func (c *Client) Exchange(ctx context.Context, code string) (Profile, error) {
	msToken, err := c.exchangeMicrosoftCode(ctx, code)
	if err != nil {
		return Profile{}, err
	}

	xbl, err := c.xboxUserToken(ctx, msToken)
	if err != nil {
		return Profile{}, err
	}

	if len(xbl.DisplayClaims.XUI) == 0 || xbl.DisplayClaims.XUI[0].UHS == "" {
		// The user hash is a mandatory input for the Minecraft login hop.
		return Profile{}, &ExchangeError{
			Stage: StageXSTSToken,
			Err:   fmt.Errorf("xbox response missing display claims"),
		}
	}
	userHash := xbl.DisplayClaims.XUI[0].UHS

	xsts, err := c.xstsToken(ctx, xbl.Token)
	if err != nil {
		return Profile{}, err
	}

	mcToken, err := c.minecraftToken(ctx, xsts.Token, userHash)
	if err != nil {
		return Profile{}, err
	}

	return c.fetchProfile(ctx, mcToken)
}

// exchangeMicrosoftCode is stage 1: authorization code for a Microsoft
// access token at the primary OAuth authority.
func (c *Client) exchangeMicrosoftCode(ctx context.Context, code string) (string, error) {
	token, err := c.oauth.Exchange(c.withHTTPClient(ctx), code)
	if err != nil {
		exchErr := &ExchangeError{Stage: StageMicrosoftToken, Err: err}
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			exchErr.Status = retrieveErr.Response.StatusCode
			exchErr.Body = string(retrieveErr.Body)
		}
		return "", exchErr
	}
	return token.AccessToken, nil
}

// xboxUserToken is stage 2: the Microsoft token presented as an RPS ticket
// to the Xbox Live user authenticator.
func (c *Client) xboxUserToken(ctx context.Context, msAccessToken string) (xboxTokenResponse, error) {
	body := map[string]any{
		"Properties": map[string]any{
			"AuthMethod": "RPS",
			"SiteName":   "user.auth.xboxlive.com",
			"RpsTicket":  "d=" + msAccessToken,
		},
		"RelyingParty": "http://auth.xboxlive.com",
		"TokenType":    "JWT",
	}

	var out xboxTokenResponse
	if err := c.postJSON(ctx, StageXboxUserToken, c.cfg.XboxUserAuthURL, body, &out); err != nil {
		return xboxTokenResponse{}, err
	}
	return out, nil
}

// xstsToken is stage 3: XBL token for an XSTS token scoped to the Minecraft
// services relying party.
func (c *Client) xstsToken(ctx context.Context, xblToken string) (xboxTokenResponse, error) {
	body := map[string]any{
		"Properties": map[string]any{
			"SandboxId":  "RETAIL",
			"UserTokens": []string{xblToken},
		},
		"RelyingParty": "rp://api.minecraftservices.com/",
		"TokenType":    "JWT",
	}

	var out xboxTokenResponse
	if err := c.postJSON(ctx, StageXSTSToken, c.cfg.XSTSAuthURL, body, &out); err != nil {
		return xboxTokenResponse{}, err
	}
	return out, nil
}

// minecraftToken is stage 4: XSTS token plus user hash for a Minecraft
// services access token.
func (c *Client) minecraftToken(ctx context.Context, xstsToken, userHash string) (string, error) {
	body := map[string]any{
		"identityToken": fmt.Sprintf("XBL3.0 x=%s;%s", userHash, xstsToken),
	}

	var out minecraftTokenResponse
	if err := c.postJSON(ctx, StageMinecraftToken, c.cfg.MinecraftLoginURL, body, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// fetchProfile is stage 5: bearer fetch of the normalized profile.
func (c *Client) fetchProfile(ctx context.Context, accessToken string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.MinecraftProfileURL, nil)
	if err != nil {
		return Profile{}, &ExchangeError{Stage: StageProfile, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return Profile{}, &ExchangeError{Stage: StageProfile, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Profile{}, &ExchangeError{Stage: StageProfile, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Profile{}, &ExchangeError{Stage: StageProfile, Status: resp.StatusCode, Body: string(raw)}
	}

	var profile Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return Profile{}, &ExchangeError{Stage: StageProfile, Err: err}
	}
	return profile, nil
}

// postJSON performs a single non-retried JSON POST for the given stage.
func (c *Client) postJSON(ctx context.Context, stage int, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &ExchangeError{Stage: stage, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &ExchangeError{Stage: stage, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &ExchangeError{Stage: stage, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ExchangeError{Stage: stage, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ExchangeError{Stage: stage, Status: resp.StatusCode, Body: string(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &ExchangeError{Stage: stage, Err: err}
	}
	return nil
}
