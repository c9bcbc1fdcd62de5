package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	CreateFn  func(ctx context.Context, user *domain.User) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ListFn    func(ctx context.Context) ([]domain.User, error)

	mu    sync.Mutex
	Users map[uuid.UUID]domain.User
}

// NewMockUserStore creates a mock store seeded with users
func NewMockUserStore(users ...*domain.User) *MockUserStore {
	m := &MockUserStore{Users: make(map[uuid.UUID]domain.User)}
	for _, u := range users {
		m.Users[u.ID] = *u
	}
	return m
}

// Create implements store.UserStore
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.Username == user.Username {
			return store.ErrUsernameExists
		}
	}
	m.Users[user.ID] = *user
	return nil
}

// GetByID implements store.UserStore
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &u, nil
}

// List implements store.UserStore, ordered by ID like the real store.
func (m *MockUserStore) List(ctx context.Context) ([]domain.User, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}

	m.mu.Lock()
	out := make([]domain.User, 0, len(m.Users))
	for _, u := range m.Users {
		out = append(out, u)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

var _ store.UserStore = (*MockUserStore)(nil)
