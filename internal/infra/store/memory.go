package store

import (
	"context"
	"sync"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

// テストと開発用のインメモリ実装。全ポートを満たす。
type MemoryStore struct {
	mu       sync.Mutex
	cart     []model.CartLine
	wishlist []model.WishlistEntry
	token    string
	hasToken bool
	user     *model.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) ([]model.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.CartLine, len(m.cart))
	copy(out, m.cart)
	return out, nil
}

func (m *MemoryStore) Save(ctx context.Context, lines []model.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart = make([]model.CartLine, len(lines))
	copy(m.cart, lines)
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart = nil
	return nil
}

type memoryWishlist struct {
	m *MemoryStore
}

func (m *MemoryStore) Wishlist() repository.WishlistStore {
	return &memoryWishlist{m: m}
}

func (w *memoryWishlist) Load(ctx context.Context) ([]model.WishlistEntry, error) {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	out := make([]model.WishlistEntry, len(w.m.wishlist))
	copy(out, w.m.wishlist)
	return out, nil
}

func (w *memoryWishlist) Save(ctx context.Context, entries []model.WishlistEntry) error {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	w.m.wishlist = make([]model.WishlistEntry, len(entries))
	copy(w.m.wishlist, entries)
	return nil
}

func (w *memoryWishlist) Clear(ctx context.Context) error {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	w.m.wishlist = nil
	return nil
}

type memorySession struct {
	m *MemoryStore
}

func (m *MemoryStore) Session() repository.SessionStore {
	return &memorySession{m: m}
}

func (s *memorySession) Token(ctx context.Context) (string, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if !s.m.hasToken {
		return "", repository.ErrNotFound
	}
	return s.m.token, nil
}

func (s *memorySession) SaveToken(ctx context.Context, token string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.token = token
	s.m.hasToken = true
	return nil
}

func (s *memorySession) User(ctx context.Context) (model.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.user == nil {
		return model.User{}, repository.ErrNotFound
	}
	return *s.m.user, nil
}

func (s *memorySession) SaveUser(ctx context.Context, u model.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.user = &u
	return nil
}

func (s *memorySession) Clear(ctx context.Context) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.token = ""
	s.m.hasToken = false
	s.m.user = nil
	return nil
}
