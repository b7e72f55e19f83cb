package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapper13/Major-Mern-Stack-Project/pkg/apiclient"
)

func storages(t *testing.T) map[string]Storage {
	t.Helper()
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return map[string]Storage{
		"memory": NewMemoryStorage(),
		"file":   fs,
		"redis":  NewRedisStorage(rdb, "shop-client"),
	}
}

func TestStorage_GetSetRemove(t *testing.T) {
	ctx := context.Background()
	for name, st := range storages(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := st.Get(ctx, KeyPaymentMethod)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, st.Set(ctx, KeyPaymentMethod, []byte(`"PayPal"`)))
			require.NoError(t, st.Set(ctx, KeyPaymentMethod, []byte(`"Stripe"`)))
			raw, ok, err := st.Get(ctx, KeyPaymentMethod)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `"Stripe"`, string(raw))

			require.NoError(t, st.Remove(ctx, KeyPaymentMethod))
			require.NoError(t, st.Remove(ctx, KeyPaymentMethod))
			_, ok, err = st.Get(ctx, KeyPaymentMethod)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestRedisStorage_Namespaced(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	st := NewRedisStorage(rdb, "alice")
	require.NoError(t, st.Set(context.Background(), KeyCartItems, []byte(`[]`)))
	assert.True(t, mr.Exists("alice:cartItems"))
}

func TestLoadState(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStorage()

	s, err := LoadState(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, InitialState(), s)

	items := []CartItem{{Product: "p1", Name: "Phone", Price: 599.99, Qty: 2}}
	addr := apiclient.ShippingAddress{Address: "1 Main St", City: "Boston", PostalCode: "02101", Country: "USA"}
	require.NoError(t, persist(ctx, st, KeyCartItems, items))
	require.NoError(t, persist(ctx, st, KeyShippingAddress, addr))
	require.NoError(t, persist(ctx, st, KeyPaymentMethod, "PayPal"))
	require.NoError(t, persist(ctx, st, KeyUserInfo, &apiclient.UserInfo{ID: "u1", Token: "tok"}))

	s, err = LoadState(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, items, s.Cart.CartItems)
	assert.Equal(t, addr, s.Cart.ShippingAddress)
	assert.Equal(t, "PayPal", s.Cart.PaymentMethod)
	require.NotNil(t, s.UserLogin.Data)
	assert.Equal(t, "tok", s.UserLogin.Data.Token)
}

func TestLoadState_CorruptValue(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStorage()
	require.NoError(t, st.Set(ctx, KeyCartItems, []byte("{not json")))

	s, err := LoadState(ctx, st)
	assert.Error(t, err)
	assert.Equal(t, InitialState(), s)
}

func TestLoadState_NullCart(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStorage()
	require.NoError(t, st.Set(ctx, KeyCartItems, []byte("null")))

	s, err := LoadState(ctx, st)
	require.NoError(t, err)
	assert.NotNil(t, s.Cart.CartItems)
}
