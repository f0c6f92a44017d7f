// Package memory is an in-process Store driver with the same semantics as
// the redis driver. It backs unit tests, e2e tests and local development
// (STORE_DRIVER=memory); nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/craftboard/craftboard/internal/craftboard/domain"
	"github.com/craftboard/craftboard/internal/craftboard/store"
)

type Store struct {
	mu sync.Mutex

	linkCodes  map[string]domain.LinkCode
	links      map[string]domain.AccountLink // by uuid
	ownerIndex map[string]string             // ownerID -> uuid
	servers    map[string]domain.Server
	tallies    map[string]int64
	cooldowns  map[string]time.Time // serverID/voterID -> expiry
}

func NewStore() *Store {
	return &Store{
		linkCodes:  make(map[string]domain.LinkCode),
		links:      make(map[string]domain.AccountLink),
		ownerIndex: make(map[string]string),
		servers:    make(map[string]domain.Server),
		tallies:    make(map[string]int64),
		cooldowns:  make(map[string]time.Time),
	}
}

func (s *Store) Close() error               { return nil }
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) LinkCodes() store.LinkCodes       { return (*linkCodesRepo)(s) }
func (s *Store) AccountLinks() store.AccountLinks { return (*accountLinksRepo)(s) }
func (s *Store) Servers() store.Servers           { return (*serversRepo)(s) }
func (s *Store) Votes() store.Votes               { return (*votesRepo)(s) }

type linkCodesRepo Store

func (r *linkCodesRepo) Put(_ context.Context, code domain.LinkCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.linkCodes[code.Code] = code
	return nil
}

func (r *linkCodesRepo) Get(_ context.Context, code string) (domain.LinkCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.linkCodes[code]
	if !ok {
		return domain.LinkCode{}, store.ErrNotFound
	}
	return record, nil
}

func (r *linkCodesRepo) Delete(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.linkCodes, code)
	return nil
}

type accountLinksRepo Store

func (r *accountLinksRepo) Put(_ context.Context, link domain.AccountLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[link.MinecraftUUID] = link
	r.ownerIndex[link.OwnerID] = link.MinecraftUUID
	return nil
}

func (r *accountLinksRepo) GetByUUID(_ context.Context, uuid string) (domain.AccountLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[uuid]
	if !ok {
		return domain.AccountLink{}, store.ErrNotFound
	}
	return link, nil
}

func (r *accountLinksRepo) GetByOwner(_ context.Context, ownerID string) (domain.AccountLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	uuid, ok := r.ownerIndex[ownerID]
	if !ok {
		return domain.AccountLink{}, store.ErrNotFound
	}

	link, ok := r.links[uuid]
	if !ok {
		return domain.AccountLink{}, store.ErrNotFound
	}
	return link, nil
}

func (r *accountLinksRepo) DeleteByOwner(_ context.Context, ownerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	uuid, ok := r.ownerIndex[ownerID]
	if !ok {
		return false, nil
	}

	delete(r.links, uuid)
	delete(r.ownerIndex, ownerID)
	return true, nil
}

type serversRepo Store

func (r *serversRepo) Create(_ context.Context, server domain.Server) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.servers[server.ID]; ok {
		return store.ErrAlreadyExists
	}
	r.servers[server.ID] = server
	return nil
}

func (r *serversRepo) Get(_ context.Context, id string) (domain.Server, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	server, ok := r.servers[id]
	if !ok {
		return domain.Server{}, store.ErrNotFound
	}
	return server, nil
}

func (r *serversRepo) List(_ context.Context) ([]domain.Server, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	servers := make([]domain.Server, 0, len(r.servers))
	for _, server := range r.servers {
		servers = append(servers, server)
	}
	return servers, nil
}

type votesRepo Store

func (r *votesRepo) BeginCooldown(_ context.Context, serverID, voterID string, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := serverID + "/" + voterID
	if expiry, ok := r.cooldowns[key]; ok && time.Now().Before(expiry) {
		return false, nil
	}
	r.cooldowns[key] = time.Now().Add(ttl)
	return true, nil
}

func (r *votesRepo) Increment(_ context.Context, serverID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tallies[serverID]++
	return r.tallies[serverID], nil
}

func (r *votesRepo) Count(_ context.Context, serverID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tallies[serverID], nil
}

func (r *votesRepo) Top(_ context.Context, limit int64) ([]store.VoteTally, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tallies := make([]store.VoteTally, 0, len(r.tallies))
	for id, votes := range r.tallies {
		tallies = append(tallies, store.VoteTally{ServerID: id, Votes: votes})
	}

	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].Votes != tallies[j].Votes {
			return tallies[i].Votes > tallies[j].Votes
		}
		return tallies[i].ServerID < tallies[j].ServerID
	})

	if limit > 0 && int64(len(tallies)) > limit {
		tallies = tallies[:limit]
	}
	return tallies, nil
}
