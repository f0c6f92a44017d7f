// Package boardapi defines the wire types of the craftboard HTTP API and a
// small client for the endpoints the game-server plugin calls.
package boardapi

// HealthResponse is returned by the /livez and /readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency readiness.
type HealthChecks struct {
	Store string `json:"store"`
}

// LinkCodeResponse is returned when a web user requests a linking code.
// ExpiresAt is unix epoch milliseconds.
type LinkCodeResponse struct {
	Success   bool   `json:"success"`
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expiresAt"`
}

// VerifyCodeRequest is sent by the game-server plugin when a player enters
// a linking code in-game.
type VerifyCodeRequest struct {
	Code     string `json:"code"`
	UUID     string `json:"minecraftUuid"`
	Username string `json:"minecraftUsername"`
}

// VerifyCodeResponse reports the outcome of a verification attempt. Message
// is player-facing; UserID is only set on success.
type VerifyCodeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

// LinkStatusResponse reports whether a Minecraft UUID is linked.
type LinkStatusResponse struct {
	Linked   bool   `json:"linked"`
	Username string `json:"username,omitempty"`
	UserID   string `json:"userId,omitempty"`
}

// LinkResponse is the web user's view of their own account link.
type LinkResponse struct {
	MinecraftUUID     string `json:"minecraftUuid"`
	MinecraftUsername string `json:"minecraftUsername"`
	LinkedAt          string `json:"linkedAt"`
}

// VoteResponse is returned after a successful vote.
type VoteResponse struct {
	Success bool  `json:"success"`
	Votes   int64 `json:"votes"`
}
