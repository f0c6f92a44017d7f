package domain

import "time"

// LinkCode is an ephemeral one-time linking code. It exists between issuance
// and verification (or expiry) and is keyed by the code itself.
type LinkCode struct {
	Code      string    `json:"code"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`

	// Used marks a consumed code. Consumed records are deleted right away,
	// so a true value surviving in the store indicates an ordering anomaly
	// rather than normal operation.
	Used bool `json:"used"`
}

// Expired reports whether the code's validity window has passed at now.
func (c LinkCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// AccountLink is the durable association between a web account and a
// Minecraft account. Keyed by the Minecraft UUID; at most one link may exist
// per UUID and per owner.
type AccountLink struct {
	MinecraftUUID     string    `json:"minecraftUuid"`
	OwnerID           string    `json:"ownerId"`
	MinecraftUsername string    `json:"minecraftUsername"`
	LinkedAt          time.Time `json:"linkedAt"`
}
