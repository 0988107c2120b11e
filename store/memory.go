package store

import (
	"context"
	"sort"
	"sync"

	"fertadvisor/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is a process-local Store for development and tests.
type Memory struct {
	mu      sync.RWMutex
	users   map[primitive.ObjectID]models.User
	byEmail map[string]primitive.ObjectID
	recs    map[primitive.ObjectID]models.RecommendationRecord
}

func NewMemory() *Memory {
	return &Memory{
		users:   make(map[primitive.ObjectID]models.User),
		byEmail: make(map[string]primitive.ObjectID),
		recs:    make(map[primitive.ObjectID]models.RecommendationRecord),
	}
}

func (m *Memory) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return ErrDuplicateKey
	}
	u.ID = primitive.NewObjectID()
	m.users[u.ID] = *u
	m.byEmail[u.Email] = u.ID
	return nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byEmail[email]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return m.users[id], nil
}

func (m *Memory) UserByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) InsertRecommendation(_ context.Context, rec *models.RecommendationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = primitive.NewObjectID()
	m.recs[rec.ID] = *rec
	return nil
}

func (m *Memory) ListRecommendations(_ context.Context, owner primitive.ObjectID, f ListFilter) ([]models.RecommendationRecord, int64, error) {
	m.mu.RLock()
	matched := make([]models.RecommendationRecord, 0)
	for _, r := range m.recs {
		if r.OwnerID != owner {
			continue
		}
		if f.CropType != "" && r.CropType != f.CropType {
			continue
		}
		matched = append(matched, r)
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.Hex() > matched[j].ID.Hex()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := f.Offset
	if start < 0 {
		start = 0
	}
	if start > len(matched) {
		start = len(matched)
	}
	end := start + f.limit()
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *Memory) GetRecommendation(_ context.Context, owner, id primitive.ObjectID) (models.RecommendationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.recs[id]
	if !ok || r.OwnerID != owner {
		return models.RecommendationRecord{}, ErrNotFound
	}
	return r, nil
}

func (m *Memory) DeleteRecommendation(_ context.Context, owner, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[id]
	if !ok || r.OwnerID != owner {
		return ErrNotFound
	}
	delete(m.recs, id)
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close(context.Context) error { return nil }
