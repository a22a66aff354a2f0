package repositories

import (
	"context"
	"fmt"

	"momo/internal/database"
	"momo/internal/models"
)

// ContactRepository stores contact form messages.
type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) error
}

// GORMContactRepository is a GORM implementation of ContactRepository.
type GORMContactRepository struct {
	conn database.Acquirer
}

// NewGORMContactRepository creates a new instance of GORMContactRepository.
func NewGORMContactRepository(conn database.Acquirer) *GORMContactRepository {
	return &GORMContactRepository{conn: conn}
}

// Create stores a contact message.
func (r *GORMContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return err
	}
	if err := db.Create(contact).Error; err != nil {
		return fmt.Errorf("failed to create contact message: %w", err)
	}
	return nil
}
