package redis

import (
	"context"
	"errors"
	"time"

	"github.com/craftboard/craftboard/internal/craftboard/store"
	"github.com/redis/go-redis/v9"
)

// Key namespaces within the shared store. Records are JSON-encoded strings
// except the vote tallies, which live in a sorted set.
const (
	keyLinkCodes    = "linkCodes/"     // + code -> LinkCode JSON
	keyAccountLinks = "accountLinks/"  // + uuid -> AccountLink JSON
	keyOwnerLinks   = "ownerLinks/"    // + ownerID -> uuid (secondary index)
	keyServers      = "servers/"       // + id -> Server JSON
	keyServerIndex  = "serverIndex"    // set of server ids
	keyVoteTallies  = "serverVotes"    // sorted set, member=id score=votes
	keyVoteCooldown = "voteCooldowns/" // + serverID + "/" + voterID, NX with TTL
)

type Store struct {
	client *redis.Client
}

// NewStore wraps an existing go-redis client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Open dials redis with the given connection settings and verifies the
// connection before returning.
func Open(addr, password string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewStore(client), nil
}

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) LinkCodes() store.LinkCodes       { return &linkCodesRepo{client: s.client} }
func (s *Store) AccountLinks() store.AccountLinks { return &accountLinksRepo{client: s.client} }
func (s *Store) Servers() store.Servers           { return &serversRepo{client: s.client} }
func (s *Store) Votes() store.Votes               { return &votesRepo{client: s.client} }

func mapNotFound(err error) error {
	if errors.Is(err, redis.Nil) {
		return store.ErrNotFound
	}
	return err
}
