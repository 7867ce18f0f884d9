package cache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/valkey-io/valkey-go"
)

const valkeyDialTimeout = 5 * time.Second

// Valkey is a [Cache] backed by a Valkey (or Redis) server.
type Valkey struct {
	client valkey.Client
	prefix string
}

// NewValkey connects to the server at rawURL (redis://[:password@]host:port) and pings it.
// Every key is stored under prefix.
func NewValkey(rawURL, prefix string) (*Valkey, error) {
	addr, password, err := parseValkeyURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Valkey URL: %w", err)
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
		Password:    password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	v := &Valkey{client: client, prefix: prefix}

	ctx, cancel := context.WithTimeout(context.Background(), valkeyDialTimeout)
	defer cancel()
	if err := v.Health(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return v, nil
}

func (v *Valkey) key(k string) string {
	return v.prefix + k
}

func (v *Valkey) Get(ctx context.Context, key string) ([]byte, error) {
	result := v.client.Do(ctx, v.client.B().Get().Key(v.key(key)).Build())
	if err := result.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, &CacheError{Operation: "get", Key: key, Err: err}
	}

	data, err := result.AsBytes()
	if err != nil {
		return nil, &CacheError{Operation: "get", Key: key, Err: err}
	}
	return data, nil
}

func (v *Valkey) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	var cmd valkey.Completed
	if expiration > 0 {
		cmd = v.client.B().Set().Key(v.key(key)).Value(valkey.BinaryString(value)).Ex(expiration).Build()
	} else {
		cmd = v.client.B().Set().Key(v.key(key)).Value(valkey.BinaryString(value)).Build()
	}

	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		return &CacheError{Operation: "set", Key: key, Err: err}
	}
	return nil
}

func (v *Valkey) Delete(ctx context.Context, key string) error {
	if err := v.client.Do(ctx, v.client.B().Del().Key(v.key(key)).Build()).Error(); err != nil {
		return &CacheError{Operation: "delete", Key: key, Err: err}
	}
	return nil
}

func (v *Valkey) Exists(ctx context.Context, key string) (bool, error) {
	count, err := v.client.Do(ctx, v.client.B().Exists().Key(v.key(key)).Build()).AsInt64()
	if err != nil {
		return false, &CacheError{Operation: "exists", Key: key, Err: err}
	}
	return count > 0, nil
}

func (v *Valkey) Close() error {
	v.client.Close()
	return nil
}

func (v *Valkey) Health(ctx context.Context) error {
	if err := v.client.Do(ctx, v.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("valkey health check failed: %w", err)
	}
	return nil
}

// parseValkeyURL extracts host:port and the optional password from rawURL.
func parseValkeyURL(rawURL string) (address, password string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid URL format: %w", err)
	}
	switch u.Scheme {
	case "redis", "rediss", "valkey", "valkeys":
	default:
		return "", "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", "", errors.New("missing host in URL")
	}
	if u.User != nil {
		password, _ = u.User.Password()
	}
	return u.Host, password, nil
}
