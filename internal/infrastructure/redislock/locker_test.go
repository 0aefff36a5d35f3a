package redislock_test

import (
	"context"
	"testing"
	"time"

	"github.com/AstralMoonlight/torn/internal/domain"
	"github.com/AstralMoonlight/torn/internal/infrastructure/redislock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocker(t *testing.T) (*redislock.Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return redislock.New(rdb, 5*time.Second), mr
}

func TestLocker_SegundoIntentoEsConflicto(t *testing.T) {
	locker, _ := newLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "cajero-1")
	require.NoError(t, err)

	_, err = locker.Lock(ctx, "cajero-1")
	assert.ErrorIs(t, err, domain.ErrConflict)

	// otro cajero no se ve afectado
	unlockOther, err := locker.Lock(ctx, "cajero-2")
	require.NoError(t, err)
	require.NoError(t, unlockOther(ctx))

	require.NoError(t, unlock(ctx))
	unlock, err = locker.Lock(ctx, "cajero-1")
	require.NoError(t, err, "tras liberar se puede volver a tomar")
	require.NoError(t, unlock(ctx))
}

func TestLocker_ExpiraPorTTL(t *testing.T) {
	locker, mr := newLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "cajero-1")
	require.NoError(t, err)
	mr.FastForward(6 * time.Second)

	again, err := locker.Lock(ctx, "cajero-1")
	require.NoError(t, err, "un candado vencido no bloquea")
	require.NoError(t, again(ctx))
	assert.NoError(t, unlock(ctx), "liberar un candado ya vencido no es error")
}
