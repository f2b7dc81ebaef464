package account

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewMemoryRepository builds an in-memory account registry.
func NewMemoryRepository() Repository {
	return &memoryRepository{accounts: make(map[string]Account)}
}

func (r *memoryRepository) Create(_ context.Context, account Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[account.ExternalKey]; exists {
		return ErrDuplicateAccount
	}
	r.accounts[account.ExternalKey] = account
	return nil
}

func (r *memoryRepository) FindByExternalKey(_ context.Context, externalKey string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[externalKey]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return account, nil
}

func (r *memoryRepository) UpdateDisplayName(_ context.Context, externalKey, displayName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[externalKey]
	if !ok {
		return ErrAccountNotFound
	}
	account.DisplayName = displayName
	r.accounts[externalKey] = account
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, externalKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[externalKey]; !ok {
		return ErrAccountNotFound
	}
	delete(r.accounts, externalKey)
	return nil
}

func (r *memoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts), nil
}
