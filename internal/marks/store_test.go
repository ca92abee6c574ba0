package marks

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zsiec/stimecode/internal/logger"
)

func setupRedisStore(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, redis.UniversalClient, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	t.Cleanup(func() { client.Close() })
	return mr, client, NewRedisStore(client, logger.NewNullLogger(), ttl)
}

// Both implementations must satisfy the same contract.
func storeImplementations(t *testing.T) map[string]Store {
	_, _, redisStore := setupRedisStore(t, 0)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  redisStore,
	}
}

func TestStoreContract(t *testing.T) {
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first := NewMark("first", mustTimecode(t, "29.97", "00:01:00;02"))
			second := NewMark("second", mustTimecode(t, "24", "-00:00:01:00"))
			second.CreatedAt = first.CreatedAt.Add(time.Millisecond)

			require.NoError(t, store.Create(ctx, second))
			require.NoError(t, store.Create(ctx, first))
			assert.ErrorIs(t, store.Create(ctx, first), ErrMarkExists)

			got, err := store.Get(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, first.Name, got.Name)
			assert.Equal(t, "00:01:00;02", got.Timecode)

			value, err := got.Value()
			require.NoError(t, err)
			assert.Equal(t, int64(1800), value.FrameNumber())

			list, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, first.ID, list[0].ID, "ordered by creation time")
			assert.Equal(t, second.ID, list[1].ID)

			count, err := store.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, count)

			require.NoError(t, got.Shift(-1800))
			require.NoError(t, store.Update(ctx, got))
			updated, err := store.Get(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, "00:00:00;00", updated.Timecode)

			require.NoError(t, store.Delete(ctx, first.ID))
			_, err = store.Get(ctx, first.ID)
			assert.ErrorIs(t, err, ErrMarkNotFound)
			assert.ErrorIs(t, store.Delete(ctx, first.ID), ErrMarkNotFound)
			assert.ErrorIs(t, store.Update(ctx, first), ErrMarkNotFound)

			count, err = store.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, count)
		})
	}
}

func TestStoreRejectsInvalidMarks(t *testing.T) {
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			bad := &Mark{ID: "bad", FrameRate: "29.97", Timecode: "00:01:00;00"}
			assert.Error(t, store.Create(context.Background(), bad))
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	mark := NewMark("a", mustTimecode(t, "25", "00:00:00:01"))
	require.NoError(t, store.Create(ctx, mark))

	mark.Name = "changed after create"
	got, err := store.Get(ctx, mark.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)

	got.Name = "changed after get"
	again, err := store.Get(ctx, mark.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Name)

	require.NoError(t, store.Close())
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRedisStore_Layout(t *testing.T) {
	mr, _, store := setupRedisStore(t, 0)
	ctx := context.Background()

	mark := NewMark("layout", mustTimecode(t, "ms", "00:00:01.500"))
	require.NoError(t, store.Create(ctx, mark))

	assert.True(t, mr.Exists("stimecode:marks:"+mark.ID))
	members, err := mr.ZMembers("stimecode:marks:index")
	require.NoError(t, err)
	assert.Equal(t, []string{mark.ID}, members)

	raw, err := mr.Get("stimecode:marks:" + mark.ID)
	require.NoError(t, err)
	assert.Contains(t, raw, `"timecode":"00:00:01.500"`)
	assert.Contains(t, raw, `"framerate":"ms"`)
	assert.NotContains(t, raw, "frame_number")
}

func TestRedisStore_TTL(t *testing.T) {
	mr, _, store := setupRedisStore(t, time.Minute)
	ctx := context.Background()

	mark := NewMark("expiring", mustTimecode(t, "30", "00:00:10:00"))
	require.NoError(t, store.Create(ctx, mark))
	assert.Equal(t, time.Minute, mr.TTL("stimecode:marks:"+mark.ID))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, mark.ID)
	assert.ErrorIs(t, err, ErrMarkNotFound)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	members, err := mr.ZMembers("stimecode:marks:index")
	if err == nil {
		assert.Empty(t, members, "expired ids pruned from index")
	}
}

func TestRedisStore_UpdateRestartsTTL(t *testing.T) {
	mr, _, store := setupRedisStore(t, time.Minute)
	ctx := context.Background()

	mark := NewMark("refresh", mustTimecode(t, "50", "00:00:00:00"))
	require.NoError(t, store.Create(ctx, mark))

	mr.FastForward(45 * time.Second)
	require.NoError(t, mark.Shift(50))
	require.NoError(t, store.Update(ctx, mark))
	assert.Equal(t, time.Minute, mr.TTL("stimecode:marks:"+mark.ID))
}

func TestRedisStore_ConnectionError(t *testing.T) {
	mr, _, store := setupRedisStore(t, 0)
	mr.Close()

	ctx := context.Background()
	mark := NewMark("offline", mustTimecode(t, "25", "00:00:00:00"))

	err := store.Create(ctx, mark)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMarkExists)

	_, err = store.Get(ctx, mark.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMarkNotFound)

	_, err = store.List(ctx)
	assert.Error(t, err)
}

func TestRedisStore_Concurrent(t *testing.T) {
	_, _, store := setupRedisStore(t, 0)
	ctx := context.Background()

	marks := make([]*Mark, 20)
	for i := range marks {
		marks[i] = NewMark(fmt.Sprintf("m%d", i), mustTimecode(t, "25", fmt.Sprintf("00:00:%02d:00", i)))
	}

	var wg sync.WaitGroup
	for _, mark := range marks {
		wg.Add(1)
		go func(m *Mark) {
			defer wg.Done()
			assert.NoError(t, store.Create(ctx, m))
		}(mark)
	}
	wg.Wait()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, count)
}
