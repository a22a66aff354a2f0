package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"momo/internal/models"
	"momo/internal/repositories"
)

// AddressForm is the structured address entered on the profile page.
type AddressForm struct {
	Line1   string `form:"line1" validate:"required"`
	Line2   string `form:"line2"`
	City    string `form:"city" validate:"required"`
	State   string `form:"state"`
	Zipcode string `form:"zipcode"`
	Phone   string `form:"phone" validate:"required"`
}

// Trim removes surrounding whitespace from every field.
func (f *AddressForm) Trim() {
	for _, field := range []*string{&f.Line1, &f.Line2, &f.City, &f.State, &f.Zipcode, &f.Phone} {
		*field = strings.TrimSpace(*field)
	}
}

// Format renders the address as the multi-line text stored on the user.
func (f AddressForm) Format() string {
	var b strings.Builder
	b.WriteString(f.Line1)
	if f.Line2 != "" {
		b.WriteString("\n" + f.Line2)
	}
	fmt.Fprintf(&b, "\n%s, %s - %s\nPhone: %s", f.City, f.State, f.Zipcode, f.Phone)
	return b.String()
}

// Profile is what the profile page shows.
type Profile struct {
	User         *models.User
	Orders       []models.Order
	SavedAddress *string
}

// ProfileService reads and updates a user's profile.
type ProfileService struct {
	userRepo  repositories.UserRepository
	orderRepo repositories.OrderRepository
}

// NewProfileService creates a new ProfileService.
func NewProfileService(userRepo repositories.UserRepository, orderRepo repositories.OrderRepository) *ProfileService {
	return &ProfileService{
		userRepo:  userRepo,
		orderRepo: orderRepo,
	}
}

// GetProfile loads the user (required) and their orders (best-effort: a
// failure yields an empty history).
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		log.Printf("Could not load orders for user %s: %v", userID, err)
		orders = []models.Order{}
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &Profile{User: user, Orders: orders, SavedAddress: user.Address}, nil
}

// SaveAddress stores the formatted address on the user and returns it.
func (s *ProfileService) SaveAddress(ctx context.Context, userID string, form AddressForm) (string, error) {
	address := form.Format()
	if err := s.userRepo.UpdateAddress(ctx, userID, address); err != nil {
		return address, fmt.Errorf("address %w: %v", ErrPersistence, err)
	}
	return address, nil
}
