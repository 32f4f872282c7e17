package memory

import (
	"context"
	"testing"

	storedomain "github.com/smallbiznis/streetsignal/internal/store/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(zap.NewNop())

	require.NoError(t, s.Set(ctx, storedomain.KeyFavorites, []string{"1", "3"}))

	var favorites []string
	require.True(t, s.Get(ctx, storedomain.KeyFavorites, &favorites))
	assert.Equal(t, []string{"1", "3"}, favorites)
}

func TestStoreMissingKeyKeepsDefault(t *testing.T) {
	balance := int64(450)
	assert.False(t, New(nil).Get(context.Background(), storedomain.KeyBalance, &balance))
	assert.Equal(t, int64(450), balance)
}

func TestStoreCorruptValueKeepsDefault(t *testing.T) {
	s := New(zap.NewNop())
	s.SetRaw(storedomain.KeyBalance, []byte("not-json"))

	balance := int64(450)
	assert.False(t, s.Get(context.Background(), storedomain.KeyBalance, &balance))
	assert.Equal(t, int64(450), balance)
}

func TestStoreNullValueKeepsDefault(t *testing.T) {
	s := New(zap.NewNop())
	s.SetRaw(storedomain.KeyUser, []byte("null"))

	type user struct{ ID string }
	u := user{ID: "u1"}
	assert.False(t, s.Get(context.Background(), storedomain.KeyUser, &u))
	assert.Equal(t, "u1", u.ID)
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := New(zap.NewNop())
	require.NoError(t, s.Set(ctx, storedomain.KeyOnboarded, true))
	require.NoError(t, s.Set(ctx, storedomain.KeyTutorialCompleted, true))

	require.NoError(t, s.Delete(ctx, storedomain.AllKeys...))

	var onboarded bool
	assert.False(t, s.Get(ctx, storedomain.KeyOnboarded, &onboarded))
}

func TestStoreRejectsEmptyKey(t *testing.T) {
	assert.ErrorIs(t, New(nil).Set(context.Background(), " ", 1), storedomain.ErrEmptyKey)
}
