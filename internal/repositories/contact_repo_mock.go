package repositories

import (
	"context"
	"sync"
	"time"

	"momo/internal/models"
)

// MockContactRepository is an in-memory implementation of ContactRepository.
type MockContactRepository struct {
	contacts []models.Contact
	mu       sync.Mutex
}

// NewMockContactRepository creates a new instance of MockContactRepository.
func NewMockContactRepository() *MockContactRepository {
	return &MockContactRepository{}
}

// Create appends a contact message.
func (r *MockContactRepository) Create(_ context.Context, contact *models.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	contact.ID = uint(len(r.contacts) + 1)
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now()
	}
	r.contacts = append(r.contacts, *contact)
	return nil
}

// All returns a copy of every stored message.
func (r *MockContactRepository) All() []models.Contact {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Contact, len(r.contacts))
	copy(out, r.contacts)
	return out
}
