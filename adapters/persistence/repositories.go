package persistence

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/khoahotran/neplaunch/adapters/persistence/memory"
	"github.com/khoahotran/neplaunch/internal/config"
	"github.com/khoahotran/neplaunch/internal/domain/embedding"
	"github.com/khoahotran/neplaunch/internal/domain/job"
	"github.com/khoahotran/neplaunch/internal/domain/match"
	"github.com/khoahotran/neplaunch/internal/domain/profile"
	"github.com/khoahotran/neplaunch/internal/domain/user"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

type Repositories struct {
	Users      user.Repository
	Profiles   profile.Repository
	Jobs       job.Repository
	Matches    match.Repository
	Embeddings embedding.Repository
}

// Open builds the repositories selected by app.storage and
// matching.embedding_store. The returned close func releases every
// connection that was opened.
func Open(cfg config.Config, log logger.Logger) (*Repositories, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	repos := &Repositories{}
	switch cfg.App.Storage {
	case "memory":
		repos.Users = memory.NewUserRepo()
		repos.Profiles = memory.NewProfileRepo()
		repos.Jobs = memory.NewJobRepo()
		repos.Matches = memory.NewMatchRepo()
	case "postgres", "":
		pool, err := NewPostgresPool(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, pool.Close)
		repos.Users = NewPostgresUserRepo(pool, log)
		repos.Profiles = NewPostgresProfileRepo(pool, log)
		repos.Jobs = NewPostgresJobRepo(pool, log)
		repos.Matches = NewPostgresMatchRepo(pool, log)
		if cfg.Matching.EmbeddingStore == "postgres" || cfg.Matching.EmbeddingStore == "" {
			repos.Embeddings = NewPostgresEmbeddingRepo(pool, log)
		}
	default:
		return nil, nil, fmt.Errorf("unknown app.storage %q", cfg.App.Storage)
	}

	if repos.Embeddings == nil {
		switch cfg.Matching.EmbeddingStore {
		case "redis":
			rdb, err := NewRedisClient(cfg, log)
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			closers = append(closers, func() { rdb.Close() })
			repos.Embeddings = NewRedisEmbeddingRepo(rdb, log)
		case "postgres":
			// Only reachable with app.storage=memory.
			log.Warn("matching.embedding_store=postgres needs app.storage=postgres; using in-memory embeddings",
				zap.String("app_storage", cfg.App.Storage))
			repos.Embeddings = memory.NewEmbeddingRepo()
		case "memory", "":
			repos.Embeddings = memory.NewEmbeddingRepo()
		default:
			closeAll()
			return nil, nil, fmt.Errorf("unknown matching.embedding_store %q", cfg.Matching.EmbeddingStore)
		}
	}
	return repos, closeAll, nil
}
