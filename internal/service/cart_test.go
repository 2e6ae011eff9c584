package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

func TestCartFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	pub := newRecordingPublisher()
	svc := &CartService{Repo: f.repo, Events: pub}
	ctx := context.Background()
	u := testutil.User(t, f.db, "alice", models.RoleUser)
	p := userPrincipal(u)
	mug := testutil.Product(t, f.db, "Mug", "7.50")
	lamp := testutil.Product(t, f.db, "Lamp", "20.00")

	item, err := svc.AddItem(ctx, p, u.ID, mug.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity, "non-positive quantity counts as one")

	item, err = svc.AddItem(ctx, p, u.ID, mug.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)

	_, err = svc.AddItem(ctx, p, u.ID, lamp.ID, 1)
	require.NoError(t, err)

	cart, err := svc.GetCart(ctx, p, u.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.True(t, cart.Items[0].LineTotal.Equal(d("22.50")))
	assert.True(t, cart.Subtotal.Equal(d("42.50")))

	_, err = svc.UpdateQuantity(ctx, p, u.ID, item.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := svc.UpdateQuantity(ctx, p, u.ID, item.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)

	require.NoError(t, svc.RemoveItem(ctx, p, u.ID, item.ID))
	assert.ErrorIs(t, svc.RemoveItem(ctx, p, u.ID, item.ID), ErrNotFound)

	n, err := svc.Clear(ctx, p, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// add, add, add, update, remove, clear
	for i := 0; i < 6; i++ {
		select {
		case <-pub.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("expected cart event %d", i+1)
		}
	}
	pub.mu.Lock()
	defer pub.mu.Unlock()
	counts := map[string]int{}
	for _, e := range pub.events {
		counts[e.Type]++
		assert.Equal(t, key(u.ID), e.Key)
	}
	assert.Equal(t, map[string]int{
		"cart_item_added":   3,
		"cart_item_updated": 1,
		"cart_item_removed": 1,
		"cart_cleared":      1,
	}, counts)
}

func TestCartRejections(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := &CartService{Repo: f.repo}
	ctx := context.Background()
	alice := testutil.User(t, f.db, "alice", models.RoleUser)
	bob := testutil.User(t, f.db, "bob", models.RoleUser)
	mug := testutil.Product(t, f.db, "Mug", "7.50")

	_, err := svc.AddItem(ctx, userPrincipal(bob), alice.ID, mug.ID, 1)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.AddItem(ctx, userPrincipal(alice), alice.ID, 0, 1)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AddItem(ctx, userPrincipal(alice), alice.ID, 404, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddItem(ctx, admin, alice.ID, mug.ID, 1)
	require.NoError(t, err, "admins may act on any cart")

	_, err = svc.GetCart(ctx, userPrincipal(bob), alice.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
