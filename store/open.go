package store

import (
	"context"
	"fmt"
	"time"
)

// Options 选择并连接存储后端。
type Options struct {
	Driver string // memory | redis | mongo | sqlite

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI      string
	MongoDatabase string

	SQLitePath string

	Timeout time.Duration
}

// Open 按 Driver 打开 Repository。memory 与 redis 返回 *KVRepository。
func Open(ctx context.Context, opts Options) (Repository, error) {
	switch opts.Driver {
	case "", "memory":
		return NewKVRepository(NewMemoryStore()), nil
	case "redis":
		rs, err := NewRedisStore(ctx, RedisOptions{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			Timeout:  opts.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return NewKVRepository(rs), nil
	case "mongo":
		return OpenMongo(ctx, opts.MongoURI, opts.MongoDatabase, opts.Timeout)
	case "sqlite":
		return OpenSQLite(ctx, opts.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
