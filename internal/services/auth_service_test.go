package services_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"testing"

	"momo/internal/database"
	"momo/internal/models"
	"momo/internal/repositories"
	"momo/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateAddress(ctx context.Context, id, address string) error {
	args := m.Called(ctx, id, address)
	return args.Error(0)
}

// TestMain is used to setup test environment
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

var (
	ctx         = context.Background()
	errNotFound = fmt.Errorf("user: %w", repositories.ErrNotFound)
	errStore    = fmt.Errorf("%w: connection refused", database.ErrConnection)
)

func TestAuthService_RegisterUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo)

	mockRepo.On("GetByUsername", ctx, "testuser").Return(nil, errNotFound).Once()
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(nil, errNotFound).Once()
	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Username == "testuser" &&
			u.Email == "test@example.com" &&
			bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("password123")) == nil
	})).Return(nil).Once()

	user, err := authService.RegisterUser(ctx, "testuser", "password123", "test@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", user.Password)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterUser_Conflicts(t *testing.T) {
	existing := &models.User{ID: "1"}

	// Username taken
	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByUsername", ctx, "testuser").Return(existing, nil).Once()
	_, err := services.NewAuthService(mockRepo).RegisterUser(ctx, "testuser", "password123", "new@example.com")
	assert.ErrorIs(t, err, services.ErrConflict)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	// Email taken
	mockRepo = new(MockUserRepository)
	mockRepo.On("GetByUsername", ctx, "newuser").Return(nil, errNotFound).Once()
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(existing, nil).Once()
	_, err = services.NewAuthService(mockRepo).RegisterUser(ctx, "newuser", "password123", "test@example.com")
	assert.ErrorIs(t, err, services.ErrConflict)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	// Lost race on the unique index
	mockRepo = new(MockUserRepository)
	mockRepo.On("GetByUsername", ctx, "racer").Return(nil, errNotFound).Once()
	mockRepo.On("GetByEmail", ctx, "racer@example.com").Return(nil, errNotFound).Once()
	mockRepo.On("Create", ctx, mock.Anything).Return(fmt.Errorf("insert: %w", repositories.ErrDuplicate)).Once()
	_, err = services.NewAuthService(mockRepo).RegisterUser(ctx, "racer", "password123", "racer@example.com")
	assert.ErrorIs(t, err, services.ErrConflict)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterUser_StoreDown(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByUsername", ctx, "testuser").Return(nil, errStore).Once()

	_, err := services.NewAuthService(mockRepo).RegisterUser(ctx, "testuser", "password123", "test@example.com")

	assert.ErrorIs(t, err, database.ErrConnection)
	assert.NotErrorIs(t, err, services.ErrConflict)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_LoginUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{ID: "user-123", Username: "testuser", Password: string(hashedPassword)}

	mockRepo.On("GetByUsername", ctx, "testuser").Return(user, nil).Once()
	result, err := authService.LoginUser(ctx, "testuser", "password123")
	require.NoError(t, err)
	assert.Equal(t, "user-123", result.User.ID)
	assert.False(t, result.Upgraded)

	// Wrong password
	mockRepo.On("GetByUsername", ctx, "testuser").Return(user, nil).Once()
	_, err = authService.LoginUser(ctx, "testuser", "wrongpassword")
	assert.Equal(t, services.ErrInvalidCredentials, err)

	// Unknown user reports the same error
	mockRepo.On("GetByUsername", ctx, "nobody").Return(nil, errNotFound).Once()
	_, err = authService.LoginUser(ctx, "nobody", "password123")
	assert.Equal(t, services.ErrInvalidCredentials, err)

	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_LoginUser_StoreDown(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByUsername", ctx, "testuser").Return(nil, errStore).Once()

	_, err := services.NewAuthService(mockRepo).LoginUser(ctx, "testuser", "password123")

	assert.ErrorIs(t, err, database.ErrConnection)
	assert.NotErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthService_LoginUser_UpgradesPlaintextOnce(t *testing.T) {
	repo := repositories.NewMockUserRepository()
	legacy := &models.User{Username: "oldtimer", Password: "plain-pass", Email: "old@example.com"}
	require.NoError(t, repo.Create(ctx, legacy))
	authService := services.NewAuthService(repo)

	first, err := authService.LoginUser(ctx, "oldtimer", "plain-pass")
	require.NoError(t, err)
	assert.True(t, first.Upgraded)

	stored, err := repo.GetByUsername(ctx, "oldtimer")
	require.NoError(t, err)
	assert.NotEqual(t, "plain-pass", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("plain-pass")))

	second, err := authService.LoginUser(ctx, "oldtimer", "plain-pass")
	require.NoError(t, err)
	assert.False(t, second.Upgraded)

	// The stored hash itself is no longer accepted as a password.
	_, err = authService.LoginUser(ctx, "oldtimer", stored.Password)
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthService_LoginUser_UpgradeFailureFailsLogin(t *testing.T) {
	mockRepo := new(MockUserRepository)
	user := &models.User{ID: "user-1", Username: "oldtimer", Password: "plain-pass"}
	mockRepo.On("GetByUsername", ctx, "oldtimer").Return(user, nil).Once()
	mockRepo.On("UpdatePassword", ctx, "user-1", mock.AnythingOfType("string")).Return(errStore).Once()

	_, err := services.NewAuthService(mockRepo).LoginUser(ctx, "oldtimer", "plain-pass")

	assert.ErrorIs(t, err, database.ErrConnection)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginUser_UpgradesWerkzeugHash(t *testing.T) {
	mockRepo := new(MockUserRepository)
	user := &models.User{
		ID:       "user-7",
		Username: "flaskuser",
		Password: "pbkdf2:sha256:1000$saltsalt$8ed94fa54631959aad9a7fc4055d329d2bf68e970e77b0b95e586b3611011f62",
	}
	mockRepo.On("GetByUsername", ctx, "flaskuser").Return(user, nil).Once()
	mockRepo.On("UpdatePassword", ctx, "user-7", mock.MatchedBy(func(h string) bool {
		return bcrypt.CompareHashAndPassword([]byte(h), []byte("momo-pass")) == nil
	})).Return(nil).Once()

	result, err := services.NewAuthService(mockRepo).LoginUser(ctx, "flaskuser", "momo-pass")

	require.NoError(t, err)
	assert.True(t, result.Upgraded)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterUser_PasswordTooLong(t *testing.T) {
	mockRepo := new(MockUserRepository)

	_, err := services.NewAuthService(mockRepo).RegisterUser(ctx, "longpass", strings.Repeat("x", 73), "long@example.com")

	assert.ErrorIs(t, err, services.ErrValidation)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_LoginUser_UpgradesLongPlaintext(t *testing.T) {
	long := strings.Repeat("dumpling", 10) // 80 bytes
	repo := repositories.NewMockUserRepository()
	legacy := &models.User{Username: "legacy", Password: long, Email: "legacy@example.com"}
	require.NoError(t, repo.Create(ctx, legacy))
	authService := services.NewAuthService(repo)

	first, err := authService.LoginUser(ctx, "legacy", long)
	require.NoError(t, err)
	assert.True(t, first.Upgraded)

	stored, err := repo.GetByUsername(ctx, "legacy")
	require.NoError(t, err)
	assert.NotEqual(t, long, stored.Password)

	second, err := authService.LoginUser(ctx, "legacy", long)
	require.NoError(t, err)
	assert.False(t, second.Upgraded)

	_, err = authService.LoginUser(ctx, "legacy", long[:72])
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}
