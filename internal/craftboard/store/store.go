package store

import (
	"context"
	"errors"
	"time"

	"github.com/craftboard/craftboard/internal/craftboard/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface over the shared key-value store.
// Concrete drivers (redis, memory) implement this. It exposes sub-repositories
// to keep concerns tidy and testable, and is injected into services so tests
// can substitute the in-memory driver.
type Store interface {
	LinkCodes() LinkCodes
	AccountLinks() AccountLinks
	Servers() Servers
	Votes() Votes

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}

// LinkCodes holds ephemeral linking codes, keyed by the code itself.
// Only the linking service writes this namespace.
type LinkCodes interface {
	// Put stores a code record. An existing record under the same code is
	// overwritten (last writer wins on the rare in-window collision).
	Put(ctx context.Context, code domain.LinkCode) error

	// Get returns the record for a code, or ErrNotFound.
	Get(ctx context.Context, code string) (domain.LinkCode, error)

	// Delete removes a code record. Deleting an absent code is not an error.
	Delete(ctx context.Context, code string) error
}

// AccountLinks holds durable web-account to Minecraft-account associations.
// The primary record is keyed by Minecraft UUID; drivers also maintain an
// owner index so owner lookups never scan, and they write the pair
// atomically.
type AccountLinks interface {
	// Put stores a link and its owner index entry.
	Put(ctx context.Context, link domain.AccountLink) error

	// GetByUUID returns the link for a Minecraft UUID, or ErrNotFound.
	GetByUUID(ctx context.Context, uuid string) (domain.AccountLink, error)

	// GetByOwner returns the link for a web account, or ErrNotFound.
	GetByOwner(ctx context.Context, ownerID string) (domain.AccountLink, error)

	// DeleteByOwner removes the link and index for a web account.
	// Reports whether a record was actually deleted.
	DeleteByOwner(ctx context.Context, ownerID string) (bool, error)
}

// Servers holds the public catalogue.
type Servers interface {
	// Create inserts a new server. ErrAlreadyExists when the id is taken.
	Create(ctx context.Context, server domain.Server) error

	// Get returns a server by id, or ErrNotFound.
	Get(ctx context.Context, id string) (domain.Server, error)

	// List returns every catalogue entry, unordered.
	List(ctx context.Context) ([]domain.Server, error)
}

// VoteTally pairs a server with its accumulated vote count.
type VoteTally struct {
	ServerID string
	Votes    int64
}

// Votes tracks vote tallies and per-voter cooldowns.
type Votes interface {
	// BeginCooldown claims the voter's cooldown slot for a server if it is
	// free, with the given ttl. Reports whether the slot was claimed.
	BeginCooldown(ctx context.Context, serverID, voterID string, ttl time.Duration) (bool, error)

	// Increment adds one vote to a server's tally and returns the new total.
	Increment(ctx context.Context, serverID string) (int64, error)

	// Count returns a server's tally. An unknown server counts as zero.
	Count(ctx context.Context, serverID string) (int64, error)

	// Top returns up to limit tallies ordered by votes, highest first.
	Top(ctx context.Context, limit int64) ([]VoteTally, error)
}
