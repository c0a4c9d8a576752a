package core

import (
	"context"
	"time"
)

const (
	DefaultBaseURL = "http://localhost:8000/api"
	DefaultTimeout = 30 * time.Second

	// storage keys
	AuthTokenKey = "auth_token"
	LanguageKey  = "language"
)

// Storage is a minimal key/value persistent store.
// Get returns an empty string and no error when the key is missing.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
