package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/models"
)

type memResearch struct {
	mu      sync.Mutex
	next    int
	items   map[string]models.Research
	findErr error
}

func newMemResearch(rs ...models.Research) *memResearch {
	m := &memResearch{items: map[string]models.Research{}}
	for _, r := range rs {
		m.items[r.ID] = r
	}
	return m
}

func (m *memResearch) EnsureIndexes(ctx context.Context) error { return nil }

func (m *memResearch) Create(ctx context.Context, r *models.Research) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	id := "r" + strconv.Itoa(m.next)
	cp := *r
	cp.ID = id
	m.items[id] = cp
	return id, nil
}

func (m *memResearch) FindAll(ctx context.Context) ([]models.Research, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Research, 0, len(m.items))
	for _, r := range m.items {
		out = append(out, r)
	}
	return out, nil
}

func (m *memResearch) FindByID(ctx context.Context, id string) (*models.Research, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	r, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memResearch) Update(ctx context.Context, id string, r *models.Research) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	cp.ID = id
	m.items[id] = cp
	return nil
}

func (m *memResearch) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

type memData struct {
	mu      sync.Mutex
	items   []models.ResearchData
	findErr error
}

func (m *memData) EnsureIndexes(ctx context.Context) error { return nil }

func (m *memData) Create(ctx context.Context, d *models.ResearchData) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	cp.ID = "d" + strconv.Itoa(len(m.items)+1)
	m.items = append(m.items, cp)
	return cp.ID, nil
}

func (m *memData) Find(ctx context.Context, f models.DataFilter) ([]models.ResearchData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []models.ResearchData
	for _, d := range m.items {
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

func (m *memData) CountByResearch(ctx context.Context, researchID string) (int, error) {
	ds, err := m.Find(ctx, models.DataFilter{ResearchID: researchID})
	return len(ds), err
}

type memUsers struct {
	mu    sync.Mutex
	items map[string]models.User
}

func newMemUsers() *memUsers { return &memUsers{items: map[string]models.User{}} }

func (m *memUsers) EnsureIndexes(ctx context.Context) error { return nil }

func (m *memUsers) Create(ctx context.Context, u *models.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	cp.ID = "u" + strconv.Itoa(len(m.items)+1)
	m.items[cp.ID] = cp
	return cp.ID, nil
}

func (m *memUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.items {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

type recordedExport struct {
	result string
	rows   int
}

type fakeRecorder struct {
	mu   sync.Mutex
	seen []recordedExport
}

func (r *fakeRecorder) ObserveExport(result string, rows int, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, recordedExport{result: result, rows: rows})
}
