package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/pkg/cache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*RedisRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisRepository(cache.NewFromClient(client), time.Hour), mr
}

func TestLoadMissingCart(t *testing.T) {
	repo, _ := newRepo(t)

	contents, err := repo.Load(context.Background(), "session:abc")
	require.NoError(t, err)
	assert.Nil(t, contents)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	c := cart.New(cart.DefaultRules())
	require.NoError(t, c.AddItem(model.LineItem{
		ProductID:       "p1",
		SKU:             "WHEY-CHOCO-2LB",
		Price:           35,
		Qty:             2,
		SelectedOptions: model.NewSelection(map[string]string{"Size": "2LB", "Flavor": "Chocolate"}),
	}))
	want := c.Contents()

	require.NoError(t, repo.Save(ctx, "user:42", &want))
	assert.True(t, mr.Exists("cart:user:42"))
	assert.Equal(t, time.Hour, mr.TTL("cart:user:42"))

	raw, err := mr.Get("cart:user:42")
	require.NoError(t, err)
	assert.NotContains(t, raw, "isCartOpen")
	assert.Contains(t, raw, `"selectedOptions":{"Flavor":"Chocolate","Size":"2LB"}`)

	got, err := repo.Load(ctx, "user:42")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestLoadCorruptCart(t *testing.T) {
	repo, mr := newRepo(t)
	require.NoError(t, mr.Set("cart:session:x", "{not json"))

	_, err := repo.Load(context.Background(), "session:x")
	assert.ErrorContains(t, err, "decode cart")
}

func TestDelete(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	contents := cart.New(cart.DefaultRules()).Contents()
	require.NoError(t, repo.Save(ctx, "session:x", &contents))
	require.NoError(t, repo.Delete(ctx, "session:x"))
	assert.False(t, mr.Exists("cart:session:x"))
}

func TestStoreUnavailable(t *testing.T) {
	repo, mr := newRepo(t)
	mr.Close()

	_, err := repo.Load(context.Background(), "session:x")
	assert.ErrorContains(t, err, "load cart")
}
