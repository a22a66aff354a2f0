package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"momo/internal/database"
	"momo/internal/models"
	"momo/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newGateway(t *testing.T) *database.Gateway {
	t.Helper()
	gw := database.NewGateway(database.Config{
		Driver: database.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	})
	t.Cleanup(func() { gw.Close() })
	return gw
}

type downGateway struct{}

func (downGateway) Acquire(context.Context) (*gorm.DB, error) {
	return nil, fmt.Errorf("%w: connection refused", database.ErrConnection)
}

func TestGORMUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(newGateway(t))

	user := &models.User{Username: "tashi", Password: "hash", Email: "tashi@example.com"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)

	byName, err := repo.GetByUsername(ctx, "tashi")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
	assert.Nil(t, byName.Address)

	byEmail, err := repo.GetByEmail(ctx, "tashi@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	err = repo.Create(ctx, &models.User{Username: "tashi", Password: "x", Email: "other@example.com"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
	err = repo.Create(ctx, &models.User{Username: "other", Password: "x", Email: "tashi@example.com"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "new-hash"))
	require.NoError(t, repo.UpdateAddress(ctx, user.ID, "1 Durbar Marg"))

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", byID.Password)
	require.NotNil(t, byID.Address)
	assert.Equal(t, "1 Durbar Marg", *byID.Address)

	assert.ErrorIs(t, repo.UpdatePassword(ctx, "missing", "h"), repositories.ErrNotFound)
}

func TestGORMUserRepository_AddressColumnMissing(t *testing.T) {
	ctx := context.Background()
	gw := newGateway(t)
	repo := repositories.NewGORMUserRepository(gw)
	user := &models.User{Username: "dorje", Password: "hash", Email: "d@example.com"}
	require.NoError(t, repo.Create(ctx, user))

	db, err := gw.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, db.Migrator().DropColumn(&models.User{}, "Address"))

	err = repo.UpdateAddress(ctx, user.ID, "somewhere")
	assert.ErrorIs(t, err, repositories.ErrAddressUnsupported)
}

func TestGORMOrderRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMOrderRepository(newGateway(t))
	uid := "user-1"
	other := "user-2"

	first := &models.Order{
		UserID:    &uid,
		Name:      "Pema",
		Email:     "pema@example.com",
		Total:     22,
		Address:   "Thamel",
		Items:     []models.CartItem{{ID: "m1", Name: "Veg Momo", Price: 5, Quantity: 4}},
		Payment:   "cod",
		CreatedAt: time.Now().Add(-time.Hour),
	}
	second := &models.Order{UserID: &uid, Name: "Pema", Total: 30, Payment: "card", CreatedAt: time.Now()}
	foreign := &models.Order{UserID: &other, Name: "Nima", Total: 10}

	for _, o := range []*models.Order{first, second, foreign} {
		require.NoError(t, repo.Create(ctx, o))
		assert.NotEmpty(t, o.ID)
	}

	orders, err := repo.ListByUser(ctx, uid)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
	require.Len(t, orders[1].Items, 1)
	assert.Equal(t, "m1", orders[1].Items[0].ID)
	assert.Equal(t, 4, orders[1].Items[0].Quantity)
	assert.InDelta(t, 22.0, orders[1].Total, 0.001)
}

func TestGORMContactRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMContactRepository(newGateway(t))

	contact := &models.Contact{Name: "Ang", Email: "ang@example.com", Subject: "Catering", Message: "Do you cater?"}
	require.NoError(t, repo.Create(ctx, contact))
	assert.NotZero(t, contact.ID)
}

func TestGORMRepositories_StoreDown(t *testing.T) {
	ctx := context.Background()

	_, err := repositories.NewGORMUserRepository(downGateway{}).GetByUsername(ctx, "x")
	assert.True(t, errors.Is(err, database.ErrConnection))
	assert.False(t, errors.Is(err, repositories.ErrNotFound))

	err = repositories.NewGORMOrderRepository(downGateway{}).Create(ctx, &models.Order{})
	assert.ErrorIs(t, err, database.ErrConnection)

	err = repositories.NewGORMContactRepository(downGateway{}).Create(ctx, &models.Contact{})
	assert.ErrorIs(t, err, database.ErrConnection)
}

func TestMockUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockUserRepository()

	user := &models.User{Username: "tenzin", Password: "p", Email: "t@example.com"}
	require.NoError(t, repo.Create(ctx, user))
	assert.ErrorIs(t, repo.Create(ctx, &models.User{Username: "tenzin"}), repositories.ErrDuplicate)

	require.NoError(t, repo.UpdateAddress(ctx, user.ID, "Patan"))
	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Patan", *got.Address)

	_, err = repo.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
