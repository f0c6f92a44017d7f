package redis

import (
	"context"
	"errors"
	"time"

	"github.com/craftboard/craftboard/internal/craftboard/store"
	"github.com/redis/go-redis/v9"
)

type votesRepo struct {
	client *redis.Client
}

func (r *votesRepo) BeginCooldown(ctx context.Context, serverID, voterID string, ttl time.Duration) (bool, error) {
	key := keyVoteCooldown + serverID + "/" + voterID
	return r.client.SetNX(ctx, key, 1, ttl).Result()
}

func (r *votesRepo) Increment(ctx context.Context, serverID string) (int64, error) {
	total, err := r.client.ZIncrBy(ctx, keyVoteTallies, 1, serverID).Result()
	if err != nil {
		return 0, err
	}
	return int64(total), nil
}

func (r *votesRepo) Count(ctx context.Context, serverID string) (int64, error) {
	score, err := r.client.ZScore(ctx, keyVoteTallies, serverID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return int64(score), nil
}

func (r *votesRepo) Top(ctx context.Context, limit int64) ([]store.VoteTally, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := r.client.ZRevRangeWithScores(ctx, keyVoteTallies, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	tallies := make([]store.VoteTally, 0, len(rows))
	for _, row := range rows {
		id, ok := row.Member.(string)
		if !ok {
			continue
		}
		tallies = append(tallies, store.VoteTally{ServerID: id, Votes: int64(row.Score)})
	}
	return tallies, nil
}
