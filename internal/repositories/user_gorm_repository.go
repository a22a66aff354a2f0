package repositories

import (
	"context"
	"errors"
	"fmt"

	"momo/internal/database"
	"momo/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	conn database.Acquirer
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(conn database.Acquirer) *GORMUserRepository {
	return &GORMUserRepository{
		conn: conn,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return err
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to create user %s: %w", user.Username, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username", username)
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email", email)
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "user_id", id)
}

func (r *GORMUserRepository) first(ctx context.Context, column, value string) (*models.User, error) {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := db.First(&user, column+" = ?", value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with %s %s: %w", column, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by %s %s: %w", column, value, err)
	}
	return &user, nil
}

// UpdatePassword replaces the stored credential of a user.
func (r *GORMUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return err
	}
	res := db.Model(&models.User{}).Where("user_id = ?", id).Update("password", passwordHash)
	if res.Error != nil {
		return fmt.Errorf("failed to update password for user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateAddress saves the delivery address on the user record.
func (r *GORMUserRepository) UpdateAddress(ctx context.Context, id, address string) error {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return err
	}
	if !db.Migrator().HasColumn(&models.User{}, "Address") {
		return ErrAddressUnsupported
	}
	// Zero rows affected is not an error here: MySQL reports 0 when the value is unchanged.
	if err := db.Model(&models.User{}).Where("user_id = ?", id).Update("address", address).Error; err != nil {
		return fmt.Errorf("failed to update address for user %s: %w", id, err)
	}
	return nil
}
