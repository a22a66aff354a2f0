package services

import (
	"context"
	"fmt"
	"strings"

	"momo/internal/models"
	"momo/internal/repositories"
)

// ContactForm is the data submitted through the contact form.
type ContactForm struct {
	Name    string `form:"name" validate:"required,max=255"`
	Email   string `form:"email" validate:"required,email,max=255"`
	Subject string `form:"subject" validate:"required,max=255"`
	Message string `form:"message" validate:"required"`
}

// ContactService records contact form messages.
type ContactService struct {
	repo      repositories.ContactRepository
	publisher EventPublisher
}

// NewContactService creates a new ContactService. publisher may be nil.
func NewContactService(repo repositories.ContactRepository, publisher EventPublisher) *ContactService {
	return &ContactService{repo: repo, publisher: publisher}
}

// Submit appends a message to the contact log.
func (s *ContactService) Submit(ctx context.Context, form ContactForm) (*models.Contact, error) {
	contact := &models.Contact{
		Name:    strings.TrimSpace(form.Name),
		Email:   strings.TrimSpace(form.Email),
		Subject: strings.TrimSpace(form.Subject),
		Message: strings.TrimSpace(form.Message),
	}
	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("contact message %w: %v", ErrPersistence, err)
	}
	publishEvent(s.publisher, EventContactSubmitted, map[string]interface{}{
		"contact_id": contact.ID,
		"email":      contact.Email,
		"subject":    contact.Subject,
	})
	return contact, nil
}
