package marks

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/exp/slices"
)

var (
	ErrMarkNotFound = errors.New("mark not found")
	ErrMarkExists   = errors.New("mark already exists")
)

// Store persists marks. Implementations must be safe for concurrent use.
type Store interface {
	Create(ctx context.Context, mark *Mark) error
	Get(ctx context.Context, id string) (*Mark, error)
	// List returns every live mark ordered by creation time.
	List(ctx context.Context) ([]*Mark, error)
	Update(ctx context.Context, mark *Mark) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// MemoryStore keeps marks in process. It backs the CLI and tests that do
// not need Redis.
type MemoryStore struct {
	marks map[string]*Mark
	mu    sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{marks: make(map[string]*Mark)}
}

func (m *MemoryStore) Create(ctx context.Context, mark *Mark) error {
	if err := mark.validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.marks[mark.ID]; exists {
		return ErrMarkExists
	}
	stored := *mark
	m.marks[mark.ID] = &stored
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Mark, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mark, exists := m.marks[id]
	if !exists {
		return nil, ErrMarkNotFound
	}
	out := *mark
	return &out, nil
}

func (m *MemoryStore) List(ctx context.Context) ([]*Mark, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Mark, 0, len(m.marks))
	for _, mark := range m.marks {
		c := *mark
		out = append(out, &c)
	}
	sortMarks(out)
	return out, nil
}

func (m *MemoryStore) Update(ctx context.Context, mark *Mark) error {
	if err := mark.validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.marks[mark.ID]; !exists {
		return ErrMarkNotFound
	}
	stored := *mark
	m.marks[mark.ID] = &stored
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.marks[id]; !exists {
		return ErrMarkNotFound
	}
	delete(m.marks, id)
	return nil
}

func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.marks), nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marks = make(map[string]*Mark)
	return nil
}

func sortMarks(marks []*Mark) {
	slices.SortFunc(marks, func(a, b *Mark) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
