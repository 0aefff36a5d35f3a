// Package redislock candado distribuido por cajero sobre Redis (bsm/redislock).
package redislock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AstralMoonlight/torn/internal/application/cash"
	"github.com/AstralMoonlight/torn/internal/domain"
	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

var _ cash.CashierLocker = (*Locker)(nil)

const keyPrefix = "torn:lock:caja:"

// Locker toma un candado con TTL por cajero. Si otro proceso lo tiene, falla de inmediato con conflicto.
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
}

// New construye el locker sobre un cliente go-redis.
func New(rdb *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Locker{client: redislock.New(rdb), ttl: ttl}
}

// Lock obtiene el candado del cajero y devuelve la función para liberarlo.
func (l *Locker) Lock(ctx context.Context, cashierID string) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, keyPrefix+cashierID, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: caja del cajero %s en uso", domain.ErrConflict, cashierID)
	}
	if err != nil {
		return nil, fmt.Errorf("redis lock: %w", err)
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, nil
}
