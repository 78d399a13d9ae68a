package favorite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nearmex/internal/apperr"
	"nearmex/internal/destination"
	"nearmex/internal/favorite"
	"nearmex/internal/testutil"
	"nearmex/internal/user"
)

func TestFavorites(t *testing.T) {
	conn := testutil.OpenDB(t)
	ctx := context.Background()
	users := user.NewStore(conn)
	dests := destination.NewStore(conn)
	s := favorite.NewStore(conn)

	ana := &user.User{Username: "ana", Email: "ana@x.com", PasswordHash: "h"}
	luis := &user.User{Username: "luis", Email: "luis@x.com", PasswordHash: "h"}
	require.NoError(t, users.Create(ctx, ana))
	require.NoError(t, users.Create(ctx, luis))
	zocalo, err := dests.Create(ctx, destination.Input{Name: "Zocalo"})
	require.NoError(t, err)
	bellas, err := dests.Create(ctx, destination.Input{Name: "Bellas Artes"})
	require.NoError(t, err)

	require.NoError(t, s.Add(ctx, ana.ID, zocalo.ID))
	require.NoError(t, s.Add(ctx, ana.ID, zocalo.ID), "adding twice is a no-op")
	require.NoError(t, conn.Model(&favorite.Favorite{}).Where("user_id = ?", ana.ID).
		Update("created_at", time.Now().UTC().Add(-time.Hour)).Error)
	require.NoError(t, s.Add(ctx, ana.ID, bellas.ID))

	ids, err := s.IDs(ctx, ana.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{zocalo.ID, bellas.ID}, ids)

	list, err := s.List(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bellas Artes", list[0].Name, "most recent first")

	luisIDs, err := s.IDs(ctx, luis.ID)
	require.NoError(t, err)
	assert.Empty(t, luisIDs)

	assert.ErrorIs(t, s.Add(ctx, ana.ID, 0), apperr.ErrInvalidInput)
	assert.ErrorIs(t, s.Add(ctx, ana.ID, 999), apperr.ErrNotFound)

	assert.ErrorIs(t, s.Remove(ctx, luis.ID, zocalo.ID), apperr.ErrNotFoundOrForbidden, "luis never favorited it")
	require.NoError(t, s.Remove(ctx, ana.ID, zocalo.ID))
	assert.ErrorIs(t, s.Remove(ctx, ana.ID, zocalo.ID), apperr.ErrNotFoundOrForbidden)

	ids, _ = s.IDs(ctx, ana.ID)
	assert.Equal(t, []uint{bellas.ID}, ids)
}
