package runstate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// runTTL bounds entries of runs that never reach Expire, e.g. after a crash.
const runTTL = 24 * time.Hour

const (
	fieldStatus  = "status"
	fieldScanned = "pagesScanned"
	fieldTotal   = "totalPages"
	fieldIssues  = "issuesFound"
)

// Every script returns 0 when the run hash is gone so writes never
// resurrect an expired run.
var (
	setStatusScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return 0 end
redis.call('HSET', KEYS[1], 'status', ARGV[1])
return 1`)

	setProgressScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return 0 end
local cur = tonumber(redis.call('HGET', KEYS[1], 'pagesScanned') or '0')
if tonumber(ARGV[1]) > cur then redis.call('HSET', KEYS[1], 'pagesScanned', ARGV[1]) end
redis.call('HSET', KEYS[1], 'totalPages', ARGV[2])
return 1`)

	addIssuesScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return 0 end
redis.call('HINCRBY', KEYS[1], 'issuesFound', ARGV[1])
return 1`)

	appendLogScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return 0 end
redis.call('RPUSH', KEYS[2], ARGV[1])
local ttl = redis.call('PTTL', KEYS[1])
if ttl > 0 then redis.call('PEXPIRE', KEYS[2], ttl) end
return 1`)
)

// Redis is a Registry shared by every process pointed at the same server.
// A run is a hash {prefix}run:{id} plus a log list {prefix}run:{id}:logs.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to redisURL (redis://[:password@]host:port/db).
func NewRedis(redisURL, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return &Redis{client: client, prefix: prefix}, nil
}

func runKey(prefix, id string) string {
	return prefix + "run:" + id
}

func logsKey(prefix, id string) string {
	return runKey(prefix, id) + ":logs"
}

func (r *Redis) Create(ctx context.Context, id string, totalPages int) error {
	key, logs := runKey(r.prefix, id), logsKey(r.prefix, id)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key, logs)
		pipe.HSet(ctx, key,
			fieldStatus, string(StatusQueued),
			fieldScanned, 0,
			fieldTotal, totalPages,
			fieldIssues, 0,
		)
		pipe.Expire(ctx, key, runTTL)
		return nil
	})
	return err
}

func (r *Redis) Get(ctx context.Context, id string) (Snapshot, error) {
	fields, err := r.client.HGetAll(ctx, runKey(r.prefix, id)).Result()
	if err != nil {
		return Snapshot{}, err
	}
	if len(fields) == 0 {
		return Snapshot{}, ErrNotFound
	}
	logs, err := r.client.LRange(ctx, logsKey(r.prefix, id), 0, -1).Result()
	if err != nil {
		return Snapshot{}, err
	}
	return snapshotFromHash(fields, logs), nil
}

func snapshotFromHash(fields map[string]string, logs []string) Snapshot {
	atoi := func(k string) int {
		n, _ := strconv.Atoi(fields[k])
		return n
	}
	if logs == nil {
		logs = []string{}
	}
	return Snapshot{
		Status:       Status(fields[fieldStatus]),
		PagesScanned: atoi(fieldScanned),
		TotalPages:   atoi(fieldTotal),
		IssuesFound:  atoi(fieldIssues),
		Logs:         logs,
	}
}

func (r *Redis) run(ctx context.Context, script *redis.Script, id string, args ...interface{}) error {
	keys := []string{runKey(r.prefix, id), logsKey(r.prefix, id)}
	ok, err := script.Run(ctx, r.client, keys, args...).Int()
	if err != nil {
		return err
	}
	if ok == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Redis) SetStatus(ctx context.Context, id string, status Status) error {
	return r.run(ctx, setStatusScript, id, string(status))
}

func (r *Redis) SetProgress(ctx context.Context, id string, scanned, total int) error {
	return r.run(ctx, setProgressScript, id, scanned, total)
}

func (r *Redis) AddIssues(ctx context.Context, id string, n int) error {
	if n <= 0 {
		return nil
	}
	return r.run(ctx, addIssuesScript, id, n)
}

func (r *Redis) AppendLog(ctx context.Context, id, line string) error {
	return r.run(ctx, appendLogScript, id, line)
}

func (r *Redis) Expire(ctx context.Context, id string, after time.Duration) error {
	key, logs := runKey(r.prefix, id), logsKey(r.prefix, id)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if after <= 0 {
			pipe.Del(ctx, key, logs)
			return nil
		}
		pipe.Expire(ctx, key, after)
		pipe.Expire(ctx, logs, after)
		return nil
	})
	return err
}

func (r *Redis) Close() error {
	return r.client.Close()
}
