// Package inmem is a process local core.Storage; values are lost on exit.
package inmem

import (
	"context"

	gocache "github.com/patrickmn/go-cache"

	"github.com/trezcool/masomo-client/core"
)

type Storage struct {
	c *gocache.Cache
}

var _ core.Storage = (*Storage)(nil)

func New() *Storage {
	return &Storage{c: gocache.New(gocache.NoExpiration, 0)}
}

func (s *Storage) Get(_ context.Context, key string) (string, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return "", nil
	}
	str, _ := v.(string)
	return str, nil
}

func (s *Storage) Set(_ context.Context, key, value string) error {
	s.c.Set(key, value, gocache.NoExpiration)
	return nil
}

func (s *Storage) Remove(_ context.Context, key string) error {
	s.c.Delete(key)
	return nil
}
