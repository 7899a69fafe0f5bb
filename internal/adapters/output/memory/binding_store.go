package memory

import (
	"sync"

	"directline-bridge/internal/domain"
	"directline-bridge/internal/ports/output"
)

// Compile-time check to ensure MemoryBindingStore implements ChannelBindingStore interface
var _ output.ChannelBindingStore = (*MemoryBindingStore)(nil)

// MemoryBindingStore struct - Output adapter for in-memory LINE user bindings.
// Uses sync.Map for thread-safe concurrent access.
type MemoryBindingStore struct {
	bindings sync.Map
}

// NewMemoryBindingStore creates a new in-memory binding store
func NewMemoryBindingStore() *MemoryBindingStore {
	return &MemoryBindingStore{}
}

// GetBinding retrieves the binding for a LINE user
func (m *MemoryBindingStore) GetBinding(userID string) (domain.ChannelBinding, bool) {
	value, exists := m.bindings.Load(userID)
	if !exists {
		return domain.ChannelBinding{}, false
	}

	binding, ok := value.(domain.ChannelBinding)
	if !ok {
		// If data is malformed, delete and report missing
		m.bindings.Delete(userID)
		return domain.ChannelBinding{}, false
	}

	return binding, true
}

// SaveBinding creates or replaces a binding
func (m *MemoryBindingStore) SaveBinding(binding domain.ChannelBinding) {
	m.bindings.Store(binding.UserID, binding)
}

// DeleteBinding removes a binding. Idempotent.
func (m *MemoryBindingStore) DeleteBinding(userID string) {
	m.bindings.Delete(userID)
}
