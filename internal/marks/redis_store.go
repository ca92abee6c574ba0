package marks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zsiec/stimecode/internal/logger"
	"github.com/zsiec/stimecode/internal/metrics"
)

const defaultPrefix = "stimecode:marks:"

// createScript stores a mark only if its id is unused and indexes it by
// creation time in one step.
var createScript = redis.NewScript(`
	local key = KEYS[1]
	local index_key = KEYS[2]
	local data = ARGV[1]
	local ttl = tonumber(ARGV[2])
	local id = ARGV[3]
	local score = ARGV[4]
	local ok
	if ttl > 0 then
		ok = redis.call('SET', key, data, 'PX', ttl, 'NX')
	else
		ok = redis.call('SET', key, data, 'NX')
	end
	if not ok then
		return 0
	end
	redis.call('ZADD', index_key, score, id)
	return 1
`)

// RedisStore keeps marks as JSON strings under prefix+id with a sorted set
// index scored by creation time. A zero ttl keeps marks until deleted.
type RedisStore struct {
	client redis.UniversalClient
	logger logger.Logger
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, log logger.Logger, ttl time.Duration) *RedisStore {
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &RedisStore{
		client: client,
		logger: log.WithField("component", "marks"),
		prefix: defaultPrefix,
		ttl:    ttl,
	}
}

func (r *RedisStore) key(id string) string { return r.prefix + id }
func (r *RedisStore) indexKey() string     { return r.prefix + "index" }

func (r *RedisStore) Create(ctx context.Context, mark *Mark) (err error) {
	defer func() { metrics.RecordMarkOperation("create", err) }()

	if err := mark.validate(); err != nil {
		return err
	}

	data, err := json.Marshal(mark)
	if err != nil {
		return fmt.Errorf("failed to marshal mark: %w", err)
	}

	created, err := createScript.Run(ctx, r.client,
		[]string{r.key(mark.ID), r.indexKey()},
		data, r.ttl.Milliseconds(), mark.ID, mark.CreatedAt.UnixMilli()).Int()
	if err != nil {
		return fmt.Errorf("failed to create mark: %w", err)
	}
	if created == 0 {
		return fmt.Errorf("%w: %s", ErrMarkExists, mark.ID)
	}

	r.logger.WithFields(map[string]interface{}{
		"mark_id":    mark.ID,
		"name":       mark.Name,
		"timecode":   mark.Timecode,
		"frame_rate": mark.FrameRate,
	}).Info("Mark created")

	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (_ *Mark, err error) {
	defer func() { metrics.RecordMarkOperation("get", err) }()

	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrMarkNotFound, id)
		}
		return nil, fmt.Errorf("failed to get mark: %w", err)
	}

	var mark Mark
	if err := json.Unmarshal(data, &mark); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mark: %w", err)
	}
	return &mark, nil
}

// List reads every indexed mark in creation order. Index entries whose
// mark has expired are pruned.
func (r *RedisStore) List(ctx context.Context) (_ []*Mark, err error) {
	defer func() { metrics.RecordMarkOperation("list", err) }()

	ids, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list marks: %w", err)
	}
	if len(ids) == 0 {
		metrics.SetMarksStored(0)
		return []*Mark{}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, r.key(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get marks: %w", err)
	}

	marks := make([]*Mark, 0, len(ids))
	var expired []interface{}
	for i, cmd := range cmds {
		data, err := cmd.Bytes()
		if errors.Is(err, redis.Nil) {
			expired = append(expired, ids[i])
			continue
		} else if err != nil {
			r.logger.WithError(err).Warnf("Failed to get mark %s", ids[i])
			continue
		}

		var mark Mark
		if err := json.Unmarshal(data, &mark); err != nil {
			r.logger.WithError(err).Warnf("Failed to unmarshal mark %s", ids[i])
			continue
		}
		marks = append(marks, &mark)
	}

	if len(expired) > 0 {
		if err := r.client.ZRem(ctx, r.indexKey(), expired...).Err(); err != nil {
			r.logger.WithError(err).Warn("Failed to prune expired marks from index")
		}
	}

	metrics.SetMarksStored(len(marks))
	return marks, nil
}

// Update overwrites an existing mark and restarts its ttl.
func (r *RedisStore) Update(ctx context.Context, mark *Mark) (err error) {
	defer func() { metrics.RecordMarkOperation("update", err) }()

	if err := mark.validate(); err != nil {
		return err
	}

	data, err := json.Marshal(mark)
	if err != nil {
		return fmt.Errorf("failed to marshal mark: %w", err)
	}

	err = r.client.SetArgs(ctx, r.key(mark.ID), data, redis.SetArgs{Mode: "XX", TTL: r.ttl}).Err()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %s", ErrMarkNotFound, mark.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update mark: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"mark_id":  mark.ID,
		"timecode": mark.Timecode,
	}).Debug("Mark updated")

	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) (err error) {
	defer func() { metrics.RecordMarkOperation("delete", err) }()

	deleted, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete mark: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("%w: %s", ErrMarkNotFound, id)
	}

	if err := r.client.ZRem(ctx, r.indexKey(), id).Err(); err != nil {
		r.logger.WithError(err).Warnf("Failed to remove mark %s from index", id)
	}

	r.logger.WithField("mark_id", id).Info("Mark deleted")
	return nil
}

func (r *RedisStore) Count(ctx context.Context) (int, error) {
	marks, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(marks), nil
}

// Close releases the Redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
