package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/craftboard/craftboard/internal/craftboard/domain"
	"github.com/craftboard/craftboard/internal/craftboard/store"
	"github.com/craftboard/craftboard/pkg/idx"
	"github.com/craftboard/craftboard/pkg/slogx"
)

var (
	ErrServerNotFound = errors.New("server not found")
	ErrVoteCooldown   = errors.New("already voted for this server recently")
	ErrInvalidServer  = errors.New("server name and address are required")
	ErrServerConflict = errors.New("server already exists")
)

// DefaultVoteCooldown is how long a voter waits between votes for the same
// server.
const DefaultVoteCooldown = 24 * time.Hour

// CatalogService manages the public server catalogue and its vote tallies.
type CatalogService struct {
	Store        store.Store
	VoteCooldown time.Duration
}

// ServerListing is a catalogue entry joined with its vote tally.
type ServerListing struct {
	domain.Server
	Votes int64 `json:"votes"`
}

func (s *CatalogService) voteCooldown() time.Duration {
	if s.VoteCooldown > 0 {
		return s.VoteCooldown
	}
	return DefaultVoteCooldown
}

// AddServer registers a new catalogue entry and returns it with its assigned
// id.
func (s *CatalogService) AddServer(ctx context.Context, server domain.Server) (domain.Server, error) {
	server.Name = strings.TrimSpace(server.Name)
	server.Address = strings.TrimSpace(server.Address)
	if server.Name == "" || server.Address == "" {
		return domain.Server{}, ErrInvalidServer
	}

	server.ID = idx.New().String()
	server.CreatedAt = time.Now()

	if err := s.Store.Servers().Create(ctx, server); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Server{}, ErrServerConflict
		}
		return domain.Server{}, err
	}

	slogx.FromContext(ctx).Info("server added to catalogue",
		slog.String("server_id", server.ID),
		slog.String("name", server.Name),
	)

	return server, nil
}

// GetServer returns one catalogue entry with its tally.
func (s *CatalogService) GetServer(ctx context.Context, id string) (ServerListing, error) {
	server, err := s.Store.Servers().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ServerListing{}, ErrServerNotFound
		}
		return ServerListing{}, err
	}

	votes, err := s.Store.Votes().Count(ctx, id)
	if err != nil {
		return ServerListing{}, err
	}

	return ServerListing{Server: server, Votes: votes}, nil
}

// ListServers returns the whole catalogue with tallies, most-voted first.
func (s *CatalogService) ListServers(ctx context.Context) ([]ServerListing, error) {
	servers, err := s.Store.Servers().List(ctx)
	if err != nil {
		return nil, err
	}

	listings := make([]ServerListing, 0, len(servers))
	for _, server := range servers {
		votes, err := s.Store.Votes().Count(ctx, server.ID)
		if err != nil {
			return nil, err
		}
		listings = append(listings, ServerListing{Server: server, Votes: votes})
	}

	sort.Slice(listings, func(i, j int) bool {
		if listings[i].Votes != listings[j].Votes {
			return listings[i].Votes > listings[j].Votes
		}
		return listings[i].Name < listings[j].Name
	})

	return listings, nil
}

// CastVote records one vote by voterID for a server. Each voter may vote for
// a given server once per cooldown window; the window is claimed before the
// tally moves so a crash can at worst lose a vote, never double one.
func (s *CatalogService) CastVote(ctx context.Context, serverID, voterID string) (int64, error) {
	log := slogx.FromContext(ctx)

	if _, err := s.Store.Servers().Get(ctx, serverID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrServerNotFound
		}
		return 0, err
	}

	claimed, err := s.Store.Votes().BeginCooldown(ctx, serverID, voterID, s.voteCooldown())
	if err != nil {
		return 0, err
	}
	if !claimed {
		return 0, ErrVoteCooldown
	}

	total, err := s.Store.Votes().Increment(ctx, serverID)
	if err != nil {
		log.Error("failed to increment vote tally", slog.Any("error", err))
		return 0, err
	}

	log.Debug("vote recorded",
		slog.String("server_id", serverID),
		slog.Int64("total", total),
	)

	return total, nil
}

// Leaderboard returns the top servers by votes, joined with their catalogue
// entries. Tallies whose server has been removed are skipped.
func (s *CatalogService) Leaderboard(ctx context.Context, limit int64) ([]ServerListing, error) {
	if limit <= 0 {
		limit = 10
	}

	tallies, err := s.Store.Votes().Top(ctx, limit)
	if err != nil {
		return nil, err
	}

	listings := make([]ServerListing, 0, len(tallies))
	for _, tally := range tallies {
		server, err := s.Store.Servers().Get(ctx, tally.ServerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		listings = append(listings, ServerListing{Server: server, Votes: tally.Votes})
	}

	return listings, nil
}
