package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/craftboard/craftboard/internal/craftboard/domain"
	"github.com/redis/go-redis/v9"
)

type accountLinksRepo struct {
	client *redis.Client
}

// Put writes the primary record and the owner index in one MULTI/EXEC so a
// link is never observable without its index entry.
func (r *accountLinksRepo) Put(ctx context.Context, link domain.AccountLink) error {
	raw, err := json.Marshal(link)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, keyAccountLinks+link.MinecraftUUID, raw, 0)
		pipe.Set(ctx, keyOwnerLinks+link.OwnerID, link.MinecraftUUID, 0)
		return nil
	})
	return err
}

func (r *accountLinksRepo) GetByUUID(ctx context.Context, uuid string) (domain.AccountLink, error) {
	raw, err := r.client.Get(ctx, keyAccountLinks+uuid).Bytes()
	if err != nil {
		return domain.AccountLink{}, mapNotFound(err)
	}

	var link domain.AccountLink
	if err := json.Unmarshal(raw, &link); err != nil {
		return domain.AccountLink{}, err
	}
	return link, nil
}

func (r *accountLinksRepo) GetByOwner(ctx context.Context, ownerID string) (domain.AccountLink, error) {
	uuid, err := r.client.Get(ctx, keyOwnerLinks+ownerID).Result()
	if err != nil {
		return domain.AccountLink{}, mapNotFound(err)
	}
	return r.GetByUUID(ctx, uuid)
}

func (r *accountLinksRepo) DeleteByOwner(ctx context.Context, ownerID string) (bool, error) {
	uuid, err := r.client.Get(ctx, keyOwnerLinks+ownerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keyAccountLinks+uuid)
		pipe.Del(ctx, keyOwnerLinks+ownerID)
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
