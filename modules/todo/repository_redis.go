package todo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	domain "github.com/example/todo-tracker/domain/todo"
	"github.com/redis/go-redis/v9"
)

// Key layout under prefix:
//
//	<prefix>next_id      counter for ID assignment
//	<prefix>item:<id>    hash {title, completed, created_at, updated_at}
//	<prefix>index        sorted set of ids scored by id (creation order)
const (
	redisNextIDKey  = "next_id"
	redisItemPrefix = "item:"
	redisIndexKey   = "index"
)

// updateScript applies a patch only if the item exists and returns the
// resulting hash, or an empty reply when it does not exist.
var updateScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return {}
end
redis.call('HSET', KEYS[1], 'updated_at', ARGV[1])
if ARGV[2] == '1' then
	redis.call('HSET', KEYS[1], 'title', ARGV[3])
end
if ARGV[4] == '1' then
	redis.call('HSET', KEYS[1], 'completed', ARGV[5])
end
return redis.call('HGETALL', KEYS[1])
`)

var deleteScript = redis.NewScript(`
local removed = redis.call('DEL', KEYS[1])
if removed == 1 then
	redis.call('ZREM', KEYS[2], ARGV[1])
end
return removed
`)

// clearScript removes items listed in the index. With ARGV[2] == '1' only
// completed items are removed. Returns the number removed.
var clearScript = redis.NewScript(`
local ids = redis.call('ZRANGE', KEYS[1], 0, -1)
local n = 0
for _, id in ipairs(ids) do
	local key = ARGV[1] .. id
	if ARGV[2] ~= '1' or redis.call('HGET', key, 'completed') == '1' then
		n = n + redis.call('DEL', key)
		redis.call('ZREM', KEYS[1], id)
	end
end
return n
`)

// RedisRepository stores todos as Redis hashes.
type RedisRepository struct {
	client *redis.Client
	prefix string
}

var _ Store = (*RedisRepository)(nil)

// OpenRedis connects to Redis and verifies the connection.
func OpenRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// NewRedisRepository creates a repository using keys under prefix.
func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	return &RedisRepository{client: client, prefix: prefix}
}

// Driver returns the backend name.
func (r *RedisRepository) Driver() string {
	return "redis"
}

func (r *RedisRepository) itemKey(id uint) string {
	return r.prefix + redisItemPrefix + strconv.FormatUint(uint64(id), 10)
}

func (r *RedisRepository) indexKey() string {
	return r.prefix + redisIndexKey
}

// List returns todos matching status, newest first.
func (r *RedisRepository) List(ctx context.Context, status domain.Status) ([]domain.Todo, error) {
	ids, err := r.client.ZRevRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	todos := make([]domain.Todo, 0, len(ids))
	if len(ids) == 0 {
		return todos, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, r.prefix+redisItemPrefix+id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load todos: %w", err)
	}

	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		t, err := decodeTodo(ids[i], fields)
		if err != nil {
			return nil, err
		}
		if status.Matches(t) {
			todos = append(todos, t)
		}
	}
	return todos, nil
}

// Create inserts t and fills in its ID and timestamps.
func (r *RedisRepository) Create(ctx context.Context, t *domain.Todo) error {
	next, err := r.client.Incr(ctx, r.prefix+redisNextIDKey).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate id: %w", err)
	}

	now := time.Now().UTC()
	t.ID = uint(next)
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.itemKey(t.ID), encodeTodo(*t))
		pipe.ZAdd(ctx, r.indexKey(), redis.Z{Score: float64(t.ID), Member: strconv.FormatUint(uint64(t.ID), 10)})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}
	return nil
}

// Update applies patch to the todo with id and returns the stored item.
func (r *RedisRepository) Update(ctx context.Context, id uint, patch domain.Patch) (*domain.Todo, error) {
	hasTitle, title := "0", ""
	if patch.Title != nil {
		hasTitle, title = "1", *patch.Title
	}
	hasCompleted, completed := "0", "0"
	if patch.Completed != nil {
		hasCompleted, completed = "1", formatBool(*patch.Completed)
	}

	reply, err := updateScript.Run(ctx, r.client,
		[]string{r.itemKey(id)},
		time.Now().UTC().Format(time.RFC3339Nano), hasTitle, title, hasCompleted, completed,
	).StringSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	if len(reply) == 0 {
		return nil, domain.ErrNotFound
	}

	fields := make(map[string]string, len(reply)/2)
	for i := 0; i+1 < len(reply); i += 2 {
		fields[reply[i]] = reply[i+1]
	}
	updated, err := decodeTodo(strconv.FormatUint(uint64(id), 10), fields)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the todo with id.
func (r *RedisRepository) Delete(ctx context.Context, id uint) error {
	removed, err := deleteScript.Run(ctx, r.client,
		[]string{r.itemKey(id), r.indexKey()},
		strconv.FormatUint(uint64(id), 10),
	).Int64()
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if removed == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteCompleted removes every completed todo atomically.
func (r *RedisRepository) DeleteCompleted(ctx context.Context) (int64, error) {
	n, err := clearScript.Run(ctx, r.client, []string{r.indexKey()}, r.prefix+redisItemPrefix, "1").Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to delete completed todos: %w", err)
	}
	return n, nil
}

// DeleteAll removes every todo atomically.
func (r *RedisRepository) DeleteAll(ctx context.Context) (int64, error) {
	n, err := clearScript.Run(ctx, r.client, []string{r.indexKey()}, r.prefix+redisItemPrefix, "0").Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to delete all todos: %w", err)
	}
	return n, nil
}

// Ping checks the Redis connection.
func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (r *RedisRepository) Close() error {
	return r.client.Close()
}

func encodeTodo(t domain.Todo) map[string]any {
	return map[string]any{
		"title":      t.Title,
		"completed":  formatBool(t.Completed),
		"created_at": t.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": t.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func decodeTodo(id string, fields map[string]string) (domain.Todo, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return domain.Todo{}, fmt.Errorf("invalid todo id %q: %w", id, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return domain.Todo{}, fmt.Errorf("invalid created_at for todo %s: %w", id, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, fields["updated_at"])
	if err != nil {
		return domain.Todo{}, fmt.Errorf("invalid updated_at for todo %s: %w", id, err)
	}
	return domain.Todo{
		ID:        uint(n),
		Title:     fields["title"],
		Completed: fields["completed"] == "1",
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
