package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/craftboard/craftboard/internal/craftboard/domain"
	"github.com/craftboard/craftboard/internal/craftboard/store/drivers/memory"
)

func newCatalogService(t *testing.T) *CatalogService {
	t.Helper()
	return &CatalogService{Store: memory.NewStore()}
}

func TestAddServerAssignsIDAndTimestamps(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t)

	server, err := svc.AddServer(t.Context(), domain.Server{
		Name:    "Skyblock Realm",
		Address: "play.skyblock.example.com",
		Version: "1.21",
	})
	require.NoError(t, err)
	require.NotEmpty(t, server.ID)
	require.WithinDuration(t, time.Now(), server.CreatedAt, 5*time.Second)

	got, err := svc.GetServer(t.Context(), server.ID)
	require.NoError(t, err)
	require.Equal(t, "Skyblock Realm", got.Name)
	require.Zero(t, got.Votes)
}

func TestAddServerRejectsBlankFields(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t)

	_, err := svc.AddServer(t.Context(), domain.Server{Name: "  ", Address: "host"})
	require.ErrorIs(t, err, ErrInvalidServer)

	_, err = svc.AddServer(t.Context(), domain.Server{Name: "name", Address: ""})
	require.ErrorIs(t, err, ErrInvalidServer)
}

func TestGetServerUnknownID(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t)

	_, err := svc.GetServer(t.Context(), "missing")
	require.ErrorIs(t, err, ErrServerNotFound)
}

func TestCastVoteIncrementsTally(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t)
	ctx := t.Context()

	server, err := svc.AddServer(ctx, domain.Server{Name: "SMP", Address: "smp.example.com"})
	require.NoError(t, err)

	total, err := svc.CastVote(ctx, server.ID, "voter-1")
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	total, err = svc.CastVote(ctx, server.ID, "voter-2")
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
}

func TestCastVoteEnforcesCooldown(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t)
	ctx := t.Context()

	server, err := svc.AddServer(ctx, domain.Server{Name: "SMP", Address: "smp.example.com"})
	require.NoError(t, err)

	_, err = svc.CastVote(ctx, server.ID, "voter-1")
	require.NoError(t, err)

	_, err = svc.CastVote(ctx, server.ID, "voter-1")
	require.ErrorIs(t, err, ErrVoteCooldown)

	// The cooldown is per server, not global.
	other, err := svc.AddServer(ctx, domain.Server{Name: "Creative", Address: "creative.example.com"})
	require.NoError(t, err)

	_, err = svc.CastVote(ctx, other.ID, "voter-1")
	require.NoError(t, err)
}

func TestCastVoteUnknownServer(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t)

	_, err := svc.CastVote(t.Context(), "missing", "voter-1")
	require.ErrorIs(t, err, ErrServerNotFound)
}

func TestListServersOrdersByVotes(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t)
	ctx := t.Context()

	a, err := svc.AddServer(ctx, domain.Server{Name: "Alpha", Address: "a.example.com"})
	require.NoError(t, err)
	b, err := svc.AddServer(ctx, domain.Server{Name: "Beta", Address: "b.example.com"})
	require.NoError(t, err)

	_, err = svc.CastVote(ctx, b.ID, "voter-1")
	require.NoError(t, err)
	_, err = svc.CastVote(ctx, b.ID, "voter-2")
	require.NoError(t, err)
	_, err = svc.CastVote(ctx, a.ID, "voter-1")
	require.NoError(t, err)

	listings, err := svc.ListServers(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	require.Equal(t, "Beta", listings[0].Name)
	require.EqualValues(t, 2, listings[0].Votes)
	require.Equal(t, "Alpha", listings[1].Name)
	require.EqualValues(t, 1, listings[1].Votes)
}

func TestLeaderboardLimitsAndOrders(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t)
	ctx := t.Context()

	ids := make([]string, 0, 3)
	for _, name := range []string{"One", "Two", "Three"} {
		server, err := svc.AddServer(ctx, domain.Server{Name: name, Address: name + ".example.com"})
		require.NoError(t, err)
		ids = append(ids, server.ID)
	}

	// Three votes for Three, two for Two, one for One.
	for i, id := range ids {
		for v := 0; v <= i; v++ {
			_, err := svc.CastVote(ctx, id, "voter-"+string(rune('a'+v)))
			require.NoError(t, err)
		}
	}

	top, err := svc.Leaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, "Three", top[0].Name)
	require.EqualValues(t, 3, top[0].Votes)
	require.Equal(t, "Two", top[1].Name)
}
