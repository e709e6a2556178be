package intgen

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisOptions struct {
	Addr     string        `cfg:"addr" def:"localhost:6379"`
	Password string        `cfg:"password"`
	DB       int           `cfg:"db"`
	KeyName  string        `cfg:"keyName" def:"orm:id"`
	Timeout  time.Duration `cfg:"timeout" def:"3s"`
}

// RedisGenerator 高 52 位毫秒时间戳 + 低 12 位序列号，序列号由 redis INCR 分配
// 多个进程共享同一个 key 前缀即可保证 ID 全局唯一
type RedisGenerator struct {
	client  *redis.Client
	keyName string
	timeout time.Duration
	now     func() time.Time
}

func NewRedisGeneratorWithOptions(options *RedisOptions) *RedisGenerator {
	if options == nil {
		options = &RedisOptions{}
	}
	addr, keyName, timeout := options.Addr, options.KeyName, options.Timeout
	if addr == "" {
		addr = "localhost:6379"
	}
	if keyName == "" {
		keyName = "orm:id"
	}
	if timeout == 0 {
		timeout = 3 * time.Second
	}

	return &RedisGenerator{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: options.Password,
			DB:       options.DB,
		}),
		keyName: keyName,
		timeout: timeout,
		now:     time.Now,
	}
}

// Generate redis 不可用时退回序列号为 0 的本地时间戳
func (g *RedisGenerator) Generate() int64 {
	id, err := g.GenerateContext(context.Background())
	if err != nil {
		return g.now().UnixMilli() << sequenceBits
	}
	return id
}

func (g *RedisGenerator) GenerateContext(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	for {
		timestamp := g.now().UnixMilli()
		key := g.keyName + ":" + strconv.FormatInt(timestamp, 10)

		pipe := g.client.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, 2*time.Second)
		if _, err := pipe.Exec(ctx); err != nil {
			return 0, err
		}

		sequence := incr.Val() - 1
		if sequence <= maxSequence {
			return timestamp<<sequenceBits | sequence, nil
		}

		// 当前毫秒的序列号已用完
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

func (g *RedisGenerator) Close() error {
	return g.client.Close()
}
