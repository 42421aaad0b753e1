package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-svc/models"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Load(ctx, 1)
	assert.ErrorIs(t, err, ErrNoSession)

	session := &Session{
		PaymentMethod: PaymentQRIS,
		Items:         []models.CartLine{{ProductID: 3, Price: 25000, Quantity: 1}},
		TotalAmount:   25000,
	}
	require.NoError(t, store.Save(ctx, 1, session))

	loaded, err := store.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(25000), loaded.TotalAmount)

	// Sessions are isolated per user.
	_, err = store.Load(ctx, 2)
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, store.Clear(ctx, 1))
	_, err = store.Load(ctx, 1)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, 1, &Session{TotalAmount: 100}))

	loaded, err := store.Load(ctx, 1)
	require.NoError(t, err)
	loaded.TotalAmount = 0

	again, err := store.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), again.TotalAmount)
}
