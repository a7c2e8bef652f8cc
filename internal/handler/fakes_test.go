package handler

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/models"
)

var errStoreDown = errors.New("store down")

type memStore struct {
	mu       sync.Mutex
	next     int
	research map[string]models.Research
	data     []models.ResearchData
	users    map[string]models.User
	down     bool
}

func newMemStore() *memStore {
	return &memStore{research: map[string]models.Research{}, users: map[string]models.User{}}
}

func (m *memStore) id() string {
	m.next++
	return strconv.Itoa(m.next)
}

type researchStore struct{ *memStore }

func (s researchStore) EnsureIndexes(context.Context) error { return nil }

func (s researchStore) Create(_ context.Context, r *models.Research) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	cp.ID = s.id()
	s.research[cp.ID] = cp
	return cp.ID, nil
}

func (s researchStore) FindAll(context.Context) ([]models.Research, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return nil, errStoreDown
	}
	var out []models.Research
	for i := 1; i <= s.next; i++ {
		if r, ok := s.research[strconv.Itoa(i)]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s researchStore) FindByID(_ context.Context, id string) (*models.Research, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.research[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s researchStore) Update(_ context.Context, id string, r *models.Research) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.research[id] = *r
	return nil
}

func (s researchStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.research, id)
	return nil
}

type dataStore struct{ *memStore }

func (s dataStore) EnsureIndexes(context.Context) error { return nil }

func (s dataStore) Create(_ context.Context, d *models.ResearchData) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	cp.ID = s.id()
	s.data = append(s.data, cp)
	return cp.ID, nil
}

func (s dataStore) Find(_ context.Context, f models.DataFilter) ([]models.ResearchData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return nil, errStoreDown
	}
	var out []models.ResearchData
	for _, d := range s.data {
		if f.ResearchID != "" && d.ResearchID != f.ResearchID {
			continue
		}
		if f.Username != "" && d.User["username"] != f.Username {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (s dataStore) CountByResearch(ctx context.Context, researchID string) (int, error) {
	rows, err := s.Find(ctx, models.DataFilter{ResearchID: researchID})
	return len(rows), err
}

type userStore struct{ *memStore }

func (s userStore) EnsureIndexes(context.Context) error { return nil }

func (s userStore) Create(_ context.Context, u *models.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	cp.ID = s.id()
	s.users[cp.ID] = cp
	return cp.ID, nil
}

func (s userStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (s userStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }
