// Package redis is a core.Storage shared through a Redis server.
package redis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/trezcool/masomo-client/core"
)

type Storage struct {
	client *goredis.Client
	prefix string
}

var _ core.Storage = (*Storage)(nil)

// Open connects to the server described by conf and checks it answers.
func Open(conf *core.Config) (*Storage, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return New(rdb, conf.Storage.Prefix), nil
}

// New wraps an existing client; keys are stored as `<prefix>:<key>` when prefix is set.
func New(client *goredis.Client, prefix string) *Storage {
	return &Storage{client: client, prefix: prefix}
}

func (s *Storage) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err == goredis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "getting key")
	}
	return val, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	return errors.Wrap(s.client.Set(ctx, s.key(key), value, 0).Err(), "setting key")
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	return errors.Wrap(s.client.Del(ctx, s.key(key)).Err(), "removing key")
}

func (s *Storage) Close() error {
	return s.client.Close()
}
