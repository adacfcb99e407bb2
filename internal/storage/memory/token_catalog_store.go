package memory

import (
	"context"
	"sort"
	"sync"

	"token-pulse/internal/domain"
	"token-pulse/internal/storage"
)

// TokenCatalogStore is an in-memory implementation of storage.TokenCatalogStore.
type TokenCatalogStore struct {
	mu        sync.RWMutex
	byID      map[string]*domain.CatalogEntry // keyed by token_id
	byAddress map[string]*domain.CatalogEntry // keyed by contract_address (unique)
}

// NewTokenCatalogStore creates a new in-memory token catalog store.
func NewTokenCatalogStore() *TokenCatalogStore {
	return &TokenCatalogStore{
		byID:      make(map[string]*domain.CatalogEntry),
		byAddress: make(map[string]*domain.CatalogEntry),
	}
}

// Insert adds a new entry. Returns ErrDuplicateKey if token_id or contract_address already exists.
func (s *TokenCatalogStore) Insert(_ context.Context, e *domain.CatalogEntry) error {
	if e == nil || e.TokenID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLocked(e); err != nil {
		return err
	}
	s.putLocked(e)
	return nil
}

// InsertBulk adds multiple entries atomically. Fails entire batch on any duplicate.
func (s *TokenCatalogStore) InsertBulk(_ context.Context, entries []*domain.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[string]struct{}, len(entries))
	addrs := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e == nil || e.TokenID == "" {
			return storage.ErrInvalidInput
		}
		if err := s.checkLocked(e); err != nil {
			return err
		}
		if _, dup := ids[e.TokenID]; dup {
			return storage.ErrDuplicateKey
		}
		if _, dup := addrs[e.ContractAddress]; dup {
			return storage.ErrDuplicateKey
		}
		ids[e.TokenID] = struct{}{}
		addrs[e.ContractAddress] = struct{}{}
	}

	for _, e := range entries {
		s.putLocked(e)
	}
	return nil
}

// GetByID retrieves an entry by token ID. Returns ErrNotFound if not exists.
func (s *TokenCatalogStore) GetByID(_ context.Context, tokenID string) (*domain.CatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.byID[tokenID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	entryCopy := *e
	return &entryCopy, nil
}

// GetByAddress retrieves an entry by contract address. Returns ErrNotFound if not exists.
func (s *TokenCatalogStore) GetByAddress(_ context.Context, contractAddress string) (*domain.CatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.byAddress[contractAddress]
	if !exists {
		return nil, storage.ErrNotFound
	}

	entryCopy := *e
	return &entryCopy, nil
}

// GetByStatus retrieves all entries of a category, ordered by token_id ASC.
func (s *TokenCatalogStore) GetByStatus(_ context.Context, status domain.Status) ([]*domain.CatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CatalogEntry
	for _, e := range s.byID {
		if e.Status == status {
			entryCopy := *e
			result = append(result, &entryCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TokenID < result[j].TokenID
	})

	return result, nil
}

func (s *TokenCatalogStore) checkLocked(e *domain.CatalogEntry) error {
	if _, exists := s.byID[e.TokenID]; exists {
		return storage.ErrDuplicateKey
	}
	if _, exists := s.byAddress[e.ContractAddress]; exists {
		return storage.ErrDuplicateKey
	}
	return nil
}

func (s *TokenCatalogStore) putLocked(e *domain.CatalogEntry) {
	entryCopy := *e
	s.byID[e.TokenID] = &entryCopy
	s.byAddress[e.ContractAddress] = &entryCopy
}

var _ storage.TokenCatalogStore = (*TokenCatalogStore)(nil)
