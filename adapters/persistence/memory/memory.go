// Package memory holds map-backed repositories used for local development
// (app.storage=memory) and tests. Every repository returns copies so callers
// never share state with the store.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/khoahotran/neplaunch/internal/domain/embedding"
	"github.com/khoahotran/neplaunch/internal/domain/job"
	"github.com/khoahotran/neplaunch/internal/domain/match"
	"github.com/khoahotran/neplaunch/internal/domain/profile"
	"github.com/khoahotran/neplaunch/internal/domain/user"
	"github.com/khoahotran/neplaunch/pkg/apperror"
)

// Users

type UserRepo struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]user.User
	byEmail map[string]uuid.UUID
}

func NewUserRepo() *UserRepo {
	return &UserRepo{byID: map[uuid.UUID]user.User{}, byEmail: map[string]uuid.UUID{}}
}

func (r *UserRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := strings.ToLower(u.Email)
	if _, ok := r.byEmail[email]; ok {
		return apperror.NewConflict("user", "email", u.Email)
	}
	r.byID[u.ID] = *u
	r.byEmail[email] = u.ID
	return nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, apperror.NewNotFound("user", email)
	}
	u := r.byID[id]
	return &u, nil
}

func (r *UserRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, apperror.NewNotFound("user", id.String())
	}
	return &u, nil
}

// Profiles

type ProfileRepo struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]profile.Profile
}

func NewProfileRepo() *ProfileRepo {
	return &ProfileRepo{profiles: map[uuid.UUID]profile.Profile{}}
}

func cloneProfile(p profile.Profile) (profile.Profile, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	c, err := profile.New(p.Role(), p.Meta().UserID, p.Meta().CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ProfileRepo) GetByUserID(_ context.Context, userID uuid.UUID) (profile.Profile, error) {
	r.mu.RLock()
	p, ok := r.profiles[userID]
	r.mu.RUnlock()
	if !ok {
		return nil, apperror.NewAppError(apperror.ErrNotFound, "profile not found", userID.String(), profile.ErrProfileNotFound)
	}
	c, err := cloneProfile(p)
	if err != nil {
		return nil, apperror.NewInternal("failed to copy profile", err)
	}
	return c, nil
}

func (r *ProfileRepo) Upsert(_ context.Context, p profile.Profile) error {
	c, err := cloneProfile(p)
	if err != nil {
		return apperror.NewInternal("failed to copy profile", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.profiles[p.Meta().UserID]; ok && prev.Role() != p.Role() {
		return apperror.NewInvalidInput("a user holds exactly one profile variant", profile.ErrRoleMismatch)
	}
	r.profiles[p.Meta().UserID] = c
	return nil
}

func (r *ProfileRepo) ListByRole(_ context.Context, role user.Role, minCompleteness float64, excludeUserID uuid.UUID) ([]profile.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]profile.Profile, 0)
	for id, p := range r.profiles {
		if id == excludeUserID || p.Role() != role || p.Meta().CompletenessScore < minCompleteness {
			continue
		}
		c, err := cloneProfile(p)
		if err != nil {
			return nil, apperror.NewInternal("failed to copy profile", err)
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Meta().UserID.String() < out[j].Meta().UserID.String()
	})
	return out, nil
}

// Embeddings

type EmbeddingRepo struct {
	mu    sync.RWMutex
	items map[uuid.UUID]map[embedding.TextSource]embedding.Embedding
}

func NewEmbeddingRepo() *EmbeddingRepo {
	return &EmbeddingRepo{items: map[uuid.UUID]map[embedding.TextSource]embedding.Embedding{}}
}

func copyEmbedding(e embedding.Embedding) embedding.Embedding {
	e.Vector = append(embedding.Vector(nil), e.Vector...)
	return e
}

func (r *EmbeddingRepo) Put(_ context.Context, e embedding.Embedding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bySource, ok := r.items[e.UserID]
	if !ok {
		bySource = map[embedding.TextSource]embedding.Embedding{}
		r.items[e.UserID] = bySource
	}
	if prev, ok := bySource[e.Source]; ok && !e.Supersedes(prev) {
		return nil
	}
	bySource[e.Source] = copyEmbedding(e)
	return nil
}

func (r *EmbeddingRepo) Get(_ context.Context, userID uuid.UUID, source embedding.TextSource) (*embedding.Embedding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.items[userID][source]
	if !ok {
		return nil, apperror.NewNotFound("embedding", userID.String()+"/"+string(source))
	}
	c := copyEmbedding(e)
	return &c, nil
}

func (r *EmbeddingRepo) latest(userID uuid.UUID) (embedding.Embedding, bool) {
	all := make([]embedding.Embedding, 0, len(r.items[userID]))
	for _, e := range r.items[userID] {
		all = append(all, e)
	}
	return embedding.Latest(all)
}

func (r *EmbeddingRepo) GetLatest(_ context.Context, userID uuid.UUID) (*embedding.Embedding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.latest(userID)
	if !ok {
		return nil, apperror.NewNotFound("embedding", userID.String())
	}
	c := copyEmbedding(e)
	return &c, nil
}

func (r *EmbeddingRepo) GetLatestForUsers(_ context.Context, userIDs []uuid.UUID) (map[uuid.UUID]embedding.Embedding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[uuid.UUID]embedding.Embedding, len(userIDs))
	for _, id := range userIDs {
		if e, ok := r.latest(id); ok {
			out[id] = copyEmbedding(e)
		}
	}
	return out, nil
}

// Matches

type MatchRepo struct {
	mu      sync.Mutex
	matches map[uuid.UUID]match.Match
	pending map[match.Key]uuid.UUID
}

func NewMatchRepo() *MatchRepo {
	return &MatchRepo{matches: map[uuid.UUID]match.Match{}, pending: map[match.Key]uuid.UUID{}}
}

func (r *MatchRepo) Create(_ context.Context, m *match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := m.Key()
	if _, ok := r.pending[key]; ok {
		return apperror.NewDuplicatePending(m.RequesterID.String(), m.TargetID.String())
	}
	r.matches[m.ID] = *m
	if m.Status == match.StatusPending {
		r.pending[key] = m.ID
	}
	return nil
}

func (r *MatchRepo) FindByID(_ context.Context, id uuid.UUID) (*match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, apperror.NewNotFound("match", id.String())
	}
	return &m, nil
}

func (r *MatchRepo) UpdateStatus(_ context.Context, m *match.Match, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.matches[m.ID]
	if !ok {
		return apperror.NewNotFound("match", m.ID.String())
	}
	if stored.Version != expectedVersion {
		return apperror.NewAlreadyFinalized(m.ID.String(), string(stored.Status))
	}
	r.matches[m.ID] = *m
	if m.Status.Terminal() {
		delete(r.pending, m.Key())
	}
	return nil
}

func (r *MatchRepo) List(_ context.Context, f match.ListFilter) ([]*match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*match.Match, 0)
	for _, m := range r.matches {
		if f.Direction == match.DirectionIncoming && m.TargetID != f.UserID {
			continue
		}
		if f.Direction == match.DirectionOutgoing && m.RequesterID != f.UserID {
			continue
		}
		if f.Direction == "" && !m.Involves(f.UserID) {
			continue
		}
		if f.Status != nil && m.Status != *f.Status {
			continue
		}
		c := m
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return paginate(out, f.Limit, f.Offset), nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// Jobs

type JobRepo struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]job.Posting
}

func NewJobRepo() *JobRepo {
	return &JobRepo{jobs: map[uuid.UUID]job.Posting{}}
}

func copyPosting(p job.Posting) *job.Posting {
	p.RequiredSkills = append([]string(nil), p.RequiredSkills...)
	return &p
}

func (r *JobRepo) Save(_ context.Context, p *job.Posting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[p.ID] = *copyPosting(*p)
	return nil
}

func (r *JobRepo) Update(_ context.Context, p *job.Posting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.jobs[p.ID]
	if !ok || stored.FounderID != p.FounderID {
		return apperror.NewNotFound("job", p.ID.String())
	}
	r.jobs[p.ID] = *copyPosting(*p)
	return nil
}

func (r *JobRepo) Delete(_ context.Context, id, founderID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.jobs[id]
	if !ok || stored.FounderID != founderID {
		return apperror.NewNotFound("job", id.String())
	}
	delete(r.jobs, id)
	return nil
}

func (r *JobRepo) FindByID(_ context.Context, id uuid.UUID) (*job.Posting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.jobs[id]
	if !ok {
		return nil, apperror.NewNotFound("job", id.String())
	}
	return copyPosting(p), nil
}

func (r *JobRepo) ListByFounder(_ context.Context, founderID uuid.UUID) ([]*job.Posting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*job.Posting, 0)
	for _, p := range r.jobs {
		if p.FounderID == founderID {
			out = append(out, copyPosting(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

var (
	_ user.Repository      = (*UserRepo)(nil)
	_ profile.Repository   = (*ProfileRepo)(nil)
	_ embedding.Repository = (*EmbeddingRepo)(nil)
	_ match.Repository     = (*MatchRepo)(nil)
	_ job.Repository       = (*JobRepo)(nil)
)
