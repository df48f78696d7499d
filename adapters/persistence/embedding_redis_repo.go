package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/neplaunch/internal/domain/embedding"
	"github.com/khoahotran/neplaunch/pkg/apperror"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

// redisEmbeddingRepo keeps one hash per user, embedding:{user_id}, with one
// JSON-encoded field per text source.
type redisEmbeddingRepo struct {
	rdb    *redis.Client
	logger logger.Logger
}

func NewRedisEmbeddingRepo(rdb *redis.Client, logger logger.Logger) embedding.Repository {
	return &redisEmbeddingRepo{rdb: rdb, logger: logger}
}

const maxPutRetries = 5

func embeddingKey(userID uuid.UUID) string {
	return "embedding:" + userID.String()
}

func decodeEmbedding(raw string) (embedding.Embedding, error) {
	var e embedding.Embedding
	err := json.Unmarshal([]byte(raw), &e)
	return e, err
}

func (r *redisEmbeddingRepo) Put(ctx context.Context, e embedding.Embedding) error {
	key := embeddingKey(e.UserID)
	field := string(e.Source)
	payload, err := json.Marshal(e)
	if err != nil {
		return apperror.NewInternal("failed to encode embedding", err)
	}

	txf := func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, key, field).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			if prev, derr := decodeEmbedding(raw); derr == nil && !e.Supersedes(prev) {
				return nil
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, field, payload)
			return nil
		})
		return err
	}

	for i := 0; i < maxPutRetries; i++ {
		err = r.rdb.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
		r.logger.Debug("Embedding write retried after concurrent update", zap.String("key", key), zap.Int("attempt", i+1))
	}
	if err != nil {
		return apperror.NewInternal("failed to store embedding", err)
	}
	return nil
}

func (r *redisEmbeddingRepo) Get(ctx context.Context, userID uuid.UUID, source embedding.TextSource) (*embedding.Embedding, error) {
	raw, err := r.rdb.HGet(ctx, embeddingKey(userID), string(source)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.NewNotFound("embedding", userID.String()+"/"+string(source))
	}
	if err != nil {
		return nil, apperror.NewInternal("failed to read embedding", err)
	}
	e, err := decodeEmbedding(raw)
	if err != nil {
		return nil, apperror.NewInternal("failed to decode embedding", err)
	}
	return &e, nil
}

func (r *redisEmbeddingRepo) latestFromHash(userID uuid.UUID, fields map[string]string) (embedding.Embedding, bool) {
	all := make([]embedding.Embedding, 0, len(fields))
	for field, raw := range fields {
		e, err := decodeEmbedding(raw)
		if err != nil {
			r.logger.Warn("Skipping undecodable embedding",
				zap.String("user_id", userID.String()), zap.String("text_source", field), zap.Error(err))
			continue
		}
		all = append(all, e)
	}
	return embedding.Latest(all)
}

func (r *redisEmbeddingRepo) GetLatest(ctx context.Context, userID uuid.UUID) (*embedding.Embedding, error) {
	fields, err := r.rdb.HGetAll(ctx, embeddingKey(userID)).Result()
	if err != nil {
		return nil, apperror.NewInternal("failed to read embeddings", err)
	}
	e, ok := r.latestFromHash(userID, fields)
	if !ok {
		return nil, apperror.NewNotFound("embedding", userID.String())
	}
	return &e, nil
}

func (r *redisEmbeddingRepo) GetLatestForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]embedding.Embedding, error) {
	out := make(map[uuid.UUID]embedding.Embedding, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(userIDs))
	_, err := r.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range userIDs {
			cmds[i] = pipe.HGetAll(ctx, embeddingKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, apperror.NewInternal(fmt.Sprintf("failed to read embeddings for %d users", len(userIDs)), err)
	}

	for i, id := range userIDs {
		if e, ok := r.latestFromHash(id, cmds[i].Val()); ok {
			out[id] = e
		}
	}
	return out, nil
}
