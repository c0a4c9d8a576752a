// Package storage selects the core.Storage adapter named by the configuration.
package storage

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/storage/database"
	"github.com/trezcool/masomo-client/storage/file"
	"github.com/trezcool/masomo-client/storage/inmem"
	"github.com/trezcool/masomo-client/storage/redis"
)

// Drivers
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverDatabase = "database"
)

// New opens the adapter selected by conf.Storage.Driver (memory by default).
// The returned closer releases any connection the adapter holds.
func New(conf *core.Config) (core.Storage, io.Closer, error) {
	switch conf.Storage.Driver {
	case "", DriverMemory:
		return inmem.New(), nopCloser{}, nil

	case DriverFile:
		path := conf.Storage.FilePath
		if path == "" {
			path = DefaultFilePath(conf)
		}
		return file.New(path), nopCloser{}, nil

	case DriverRedis:
		s, err := redis.Open(conf)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening redis storage")
		}
		return s, s, nil

	case DriverDatabase:
		s, err := database.Open(conf)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening database storage")
		}
		return s, s, nil

	default:
		return nil, nil, errors.Errorf("unknown storage driver %q", conf.Storage.Driver)
	}
}

// DefaultFilePath is `<user config dir>/<app name>/storage.json`, or the work dir
// when the user config dir is unknown.
func DefaultFilePath(conf *core.Config) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = conf.WorkDir
	}
	app := conf.AppName
	if app == "" {
		app = "masomo"
	}
	return filepath.Join(dir, app, "storage.json")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
