package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyAcquireLock(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := NewIdempotencyStore(rdb, time.Hour)

	key := KeyIdemBatch(uuid.New(), "req-1")

	mock.ExpectSetNX(key, "LOCK", time.Minute).SetVal(true)
	ok, err := store.AcquireLock(context.Background(), key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectSetNX(key, "LOCK", time.Minute).SetVal(false)
	ok, err = store.AcquireLock(context.Background(), key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyResultRoundtrip(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := NewIdempotencyStore(rdb, time.Hour)

	key := KeyIdemBatch(uuid.New(), "req-2")
	payload := `{"coupons":[]}`

	mock.ExpectSet(key, "RES:"+payload, time.Hour).SetVal("OK")
	require.NoError(t, store.SaveResult(context.Background(), key, payload))

	mock.ExpectGet(key).SetVal("RES:" + payload)
	got, ok, err := store.GetResult(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, payload, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyGetResultStates(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := NewIdempotencyStore(rdb, time.Hour)

	key := KeyIdemBatch(uuid.New(), "req-3")

	// no entry at all
	mock.ExpectGet(key).RedisNil()
	_, ok, err := store.GetResult(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, ok)

	// lock held, no result yet
	mock.ExpectGet(key).SetVal("LOCK")
	_, ok, err = store.GetResult(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectGet(key).SetVal("LOCK")
	locked, err := store.IsLocked(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, locked)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRelease(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := NewIdempotencyStore(rdb, time.Hour)

	key := KeyIdemBatch(uuid.New(), "req-4")

	mock.ExpectDel(key).SetVal(1)
	require.NoError(t, store.Release(context.Background(), key))

	assert.NoError(t, mock.ExpectationsWereMet())
}
