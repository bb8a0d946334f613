package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"commtrack/config"
	domainerrors "commtrack/internal/domain/errors"
	"commtrack/internal/domain/entity"
	"commtrack/internal/domain/repository"

	"github.com/google/uuid"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth = &config.AuthConfig{
		TokenSecret:  "test_secret_key_very_long_for_testing",
		TokenTTL:     time.Hour,
		BcryptCost:   4,
		StoreTimeout: time.Second,
	}

	return cfg
}

// memoryPrincipalStore is an in-memory PrincipalRepository that enforces the
// email-uniqueness constraint at write time, like the real store does.
type memoryPrincipalStore struct {
	mu      sync.Mutex
	byEmail map[string]*entity.Principal
	byID    map[uuid.UUID]*entity.Principal

	lookups int // store interactions, used to assert validation never touches the store
	writes  int
}

func newMemoryPrincipalStore() *memoryPrincipalStore {
	return &memoryPrincipalStore{
		byEmail: make(map[string]*entity.Principal),
		byID:    make(map[uuid.UUID]*entity.Principal),
	}
}

func (s *memoryPrincipalStore) FindByID(_ context.Context, id uuid.UUID) (*entity.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++

	principal, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrPrincipalNotFound
	}

	clone := *principal

	return &clone, nil
}

func (s *memoryPrincipalStore) FindByEmail(_ context.Context, role entity.Role, email string) (*entity.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++

	principal, ok := s.byEmail[email]
	if !ok || principal.Role != role {
		return nil, repository.ErrPrincipalNotFound
	}

	clone := *principal

	return &clone, nil
}

func (s *memoryPrincipalStore) FindAnyByEmail(_ context.Context, email string) (*entity.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++

	principal, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrPrincipalNotFound
	}

	clone := *principal

	return &clone, nil
}

func (s *memoryPrincipalStore) Create(_ context.Context, principal *entity.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++

	// Hard uniqueness constraint across both collections, independent of any
	// pre-check the caller performed.
	if _, exists := s.byEmail[principal.Email]; exists {
		return domainerrors.ErrPrincipalAlreadyExists.WrapMessage("email already claimed")
	}

	principal.ID = uuid.New()
	principal.CreatedAt = time.Now()
	principal.UpdatedAt = principal.CreatedAt

	clone := *principal
	s.byEmail[clone.Email] = &clone
	s.byID[clone.ID] = &clone

	return nil
}

func (s *memoryPrincipalStore) interactions() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lookups + s.writes
}

// failingPrincipalStore returns the configured error from every operation,
// standing in for a store that cannot answer.
type failingPrincipalStore struct {
	err error
}

func (s *failingPrincipalStore) FindByID(_ context.Context, _ uuid.UUID) (*entity.Principal, error) {
	return nil, s.err
}

func (s *failingPrincipalStore) FindByEmail(_ context.Context, _ entity.Role, _ string) (*entity.Principal, error) {
	return nil, s.err
}

func (s *failingPrincipalStore) FindAnyByEmail(_ context.Context, _ string) (*entity.Principal, error) {
	return nil, s.err
}

func (s *failingPrincipalStore) Create(_ context.Context, _ *entity.Principal) error {
	return s.err
}

type failingTransactionManager struct {
	store *failingPrincipalStore
}

func (tm *failingTransactionManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(&failingRepositoryFactory{store: tm.store})
}

type failingRepositoryFactory struct {
	store *failingPrincipalStore
}

func (f *failingRepositoryFactory) PrincipalRepo() repository.PrincipalRepository {
	return f.store
}

// memoryTransactionManager satisfies TransactionManager without real
// transaction semantics; the fake store resolves write conflicts itself.
type memoryTransactionManager struct {
	store *memoryPrincipalStore
}

func (tm *memoryTransactionManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(&memoryRepositoryFactory{store: tm.store})
}

type memoryRepositoryFactory struct {
	store *memoryPrincipalStore
}

func (f *memoryRepositoryFactory) PrincipalRepo() repository.PrincipalRepository {
	return f.store
}
