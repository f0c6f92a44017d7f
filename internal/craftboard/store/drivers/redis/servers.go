package redis

import (
	"context"
	"encoding/json"

	"github.com/craftboard/craftboard/internal/craftboard/domain"
	"github.com/craftboard/craftboard/internal/craftboard/store"
	"github.com/redis/go-redis/v9"
)

type serversRepo struct {
	client *redis.Client
}

func (r *serversRepo) Create(ctx context.Context, server domain.Server) error {
	raw, err := json.Marshal(server)
	if err != nil {
		return err
	}

	// SETNX guards the id; the index entry follows once the record exists.
	ok, err := r.client.SetNX(ctx, keyServers+server.ID, raw, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrAlreadyExists
	}

	return r.client.SAdd(ctx, keyServerIndex, server.ID).Err()
}

func (r *serversRepo) Get(ctx context.Context, id string) (domain.Server, error) {
	raw, err := r.client.Get(ctx, keyServers+id).Bytes()
	if err != nil {
		return domain.Server{}, mapNotFound(err)
	}

	var server domain.Server
	if err := json.Unmarshal(raw, &server); err != nil {
		return domain.Server{}, err
	}
	return server, nil
}

func (r *serversRepo) List(ctx context.Context) ([]domain.Server, error) {
	ids, err := r.client.SMembers(ctx, keyServerIndex).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyServers + id
	}

	rows, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	servers := make([]domain.Server, 0, len(rows))
	for _, row := range rows {
		raw, ok := row.(string)
		if !ok {
			// Index entry without a record; skip rather than fail the list.
			continue
		}

		var server domain.Server
		if err := json.Unmarshal([]byte(raw), &server); err != nil {
			return nil, err
		}
		servers = append(servers, server)
	}
	return servers, nil
}
