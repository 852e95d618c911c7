package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pescastur/storefront/internal/domain/cart"
	"github.com/pescastur/storefront/internal/domain/product"
)

func newTestManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, 15*time.Minute)
	return NewManager(store, time.Hour), mr
}

func reel(qty int) product.Product {
	return product.Product{
		UID:      "p1",
		Name:     "Carrete de Pesca",
		Price:    decimal.NewFromInt(50),
		Stock:    15,
		Quantity: qty,
	}
}

func TestWith_CreatesSessionAndSnapshots(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()
	id := m.NewID()

	err := m.With(ctx, id, func(c *cart.Cart) error {
		c.Add(reel(2))
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 1, m.Len())
	assert.True(t, mr.Exists("cart:"+id))
}

func TestWith_IsolatesSessions(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	a, b := m.NewID(), m.NewID()

	require.NoError(t, m.With(ctx, a, func(c *cart.Cart) error {
		c.Add(reel(2))
		return nil
	}))

	require.NoError(t, m.View(ctx, b, func(c *cart.Cart) error {
		assert.Equal(t, 0, c.Len())
		return nil
	}))
}

func TestWith_RehydratesAfterEviction(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	id := m.NewID()

	require.NoError(t, m.With(ctx, id, func(c *cart.Cart) error {
		c.Add(reel(3))
		return nil
	}))

	// Simulate a restart: drop the in-memory session, keep the snapshot.
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()

	require.NoError(t, m.View(ctx, id, func(c *cart.Cart) error {
		items := c.Items()
		require.Len(t, items, 1)
		assert.Equal(t, "Carrete de Pesca", items[0].Name)
		assert.Equal(t, 3, items[0].Quantity)
		assert.True(t, decimal.NewFromInt(50).Equal(items[0].Price))
		return nil
	}))
}

func TestWith_ExpiredSnapshotStartsEmpty(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()
	id := m.NewID()

	require.NoError(t, m.With(ctx, id, func(c *cart.Cart) error {
		c.Add(reel(1))
		return nil
	}))

	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	mr.FastForward(16 * time.Minute)

	require.NoError(t, m.View(ctx, id, func(c *cart.Cart) error {
		assert.Equal(t, 0, c.Len())
		return nil
	}))
}

func TestWith_FnErrorSkipsSnapshot(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()
	id := m.NewID()

	wantErr := assert.AnError
	err := m.With(ctx, id, func(c *cart.Cart) error {
		c.Add(reel(1))
		return wantErr
	})

	require.ErrorIs(t, err, wantErr)
	assert.False(t, mr.Exists("cart:"+id))
}

func TestEvictIdle(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	current := time.Now()
	m.now = func() time.Time { return current }

	require.NoError(t, m.With(ctx, m.NewID(), func(c *cart.Cart) error { return nil }))
	require.Equal(t, 1, m.Len())

	current = current.Add(2 * time.Hour)
	m.evictIdle()

	assert.Equal(t, 0, m.Len())
}
