package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/craftboard/craftboard/internal/craftboard/domain"
	"github.com/redis/go-redis/v9"
)

type linkCodesRepo struct {
	client *redis.Client
}

func (r *linkCodesRepo) Put(ctx context.Context, code domain.LinkCode) error {
	raw, err := json.Marshal(code)
	if err != nil {
		return err
	}

	// Keys get a redis TTL slightly above the logical expiry as a safety
	// net. Expiry is still decided by the service from ExpiresAt, which is
	// always checked before anything else.
	ttl := time.Until(code.ExpiresAt) + time.Minute
	if ttl <= 0 {
		ttl = time.Minute
	}

	return r.client.Set(ctx, keyLinkCodes+code.Code, raw, ttl).Err()
}

func (r *linkCodesRepo) Get(ctx context.Context, code string) (domain.LinkCode, error) {
	raw, err := r.client.Get(ctx, keyLinkCodes+code).Bytes()
	if err != nil {
		return domain.LinkCode{}, mapNotFound(err)
	}

	var record domain.LinkCode
	if err := json.Unmarshal(raw, &record); err != nil {
		return domain.LinkCode{}, err
	}
	return record, nil
}

func (r *linkCodesRepo) Delete(ctx context.Context, code string) error {
	return r.client.Del(ctx, keyLinkCodes+code).Err()
}
