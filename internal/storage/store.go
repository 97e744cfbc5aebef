// Package storage provides the durable key/value backends that hold the
// client's persisted state between runs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var ErrUnknownDriver = errors.New("unknown storage driver")

// Store is a string key/value store. Deleting a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Driver string

const (
	DriverFile   Driver = "file"
	DriverSQLite Driver = "sqlite"
	DriverRedis  Driver = "redis"
	DriverMemory Driver = "memory"
)

// Options selects and configures a backend for Open.
type Options struct {
	Driver Driver

	// Directory for file and sqlite backends.
	Path string

	// Namespace separates state for different API origins, see Namespace.
	Namespace string

	// Secret enables at-rest encryption of values when set.
	Secret string
	Salt   string

	Redis RedisOptions
}

// Open builds the configured backend, wrapping it in a SealedStore when a
// secret is configured.
func Open(ctx context.Context, opts Options) (Store, error) {

	var (
		store Store
		err   error
	)

	switch Driver(strings.ToLower(string(opts.Driver))) {
	case DriverFile, "":
		store, err = NewFileStore(opts.Path, opts.Namespace)
	case DriverSQLite:
		store, err = NewSQLiteStore(opts.Path, opts.Namespace)
	case DriverRedis:
		redisOpts := opts.Redis
		if len(redisOpts.Prefix) == 0 {
			redisOpts.Prefix = fmt.Sprintf("urbanflow:%s:", opts.Namespace)
		}
		store, err = NewRedisStore(ctx, redisOpts)
	case DriverMemory:
		store = NewMemoryStore()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, opts.Driver)
	}

	if err != nil {
		return nil, err
	}

	if len(opts.Secret) > 0 {
		sealed, err := NewSealedStore(store, opts.Secret, opts.Salt)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		return sealed, nil
	}

	return store, nil
}

// Namespace derives a filesystem and key safe name from an API base URL,
// so tokens for different backends never collide.
func Namespace(baseURL string) string {
	host := baseURL
	if parsed, err := url.Parse(baseURL); err == nil && len(parsed.Host) > 0 {
		host = parsed.Host
	}

	host = strings.ToLower(strings.TrimSpace(host))
	replacer := strings.NewReplacer(":", "_", "/", "_", "\\", "_")
	host = replacer.Replace(host)

	if len(host) == 0 {
		return "default"
	}
	return host
}

func now() time.Time {
	return time.Now().UTC()
}
