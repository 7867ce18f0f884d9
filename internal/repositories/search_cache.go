package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tunename/internal/cache"
)

// SearchCacheRepository implements [cache.Cache] on the search_cache table.
//
// Expired rows are ignored on read and removed lazily or by [SearchCacheRepository.Purge].
type SearchCacheRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ cache.Cache = (*SearchCacheRepository)(nil)

// NewSearchCacheRepository creates a new SearchCacheRepository with the given database connection
func NewSearchCacheRepository(db *sql.DB) *SearchCacheRepository {
	return &SearchCacheRepository{db: db, now: time.Now}
}

func (r *SearchCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		value     []byte
		expiresAt int64
	)
	err := r.db.QueryRowContext(ctx, `SELECT value, expires_at FROM search_cache WHERE key = ?`, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &cache.CacheError{Operation: "get", Key: key, Err: err}
	}

	if r.expired(expiresAt) {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM search_cache WHERE key = ? AND expires_at = ?`, key, expiresAt); err != nil {
			return nil, &cache.CacheError{Operation: "get", Key: key, Err: err}
		}
		return nil, nil
	}
	return value, nil
}

func (r *SearchCacheRepository) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	var expiresAt int64
	if expiration > 0 {
		expiresAt = r.now().Add(expiration).Unix()
	}

	query := `
		INSERT INTO search_cache (key, value, expires_at, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at, created_at = excluded.created_at
	`
	if _, err := r.db.ExecContext(ctx, query, key, value, expiresAt, r.now().UTC()); err != nil {
		return &cache.CacheError{Operation: "set", Key: key, Err: err}
	}
	return nil
}

func (r *SearchCacheRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM search_cache WHERE key = ?`, key); err != nil {
		return &cache.CacheError{Operation: "delete", Key: key, Err: err}
	}
	return nil
}

func (r *SearchCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	var expiresAt int64
	err := r.db.QueryRowContext(ctx, `SELECT expires_at FROM search_cache WHERE key = ?`, key).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, &cache.CacheError{Operation: "exists", Key: key, Err: err}
	}
	return !r.expired(expiresAt), nil
}

// Close is a no-op; the database handle belongs to the caller.
func (r *SearchCacheRepository) Close() error {
	return nil
}

func (r *SearchCacheRepository) Health(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("search cache health check failed: %w", err)
	}
	return nil
}

// Purge deletes expired entries and returns how many were removed.
func (r *SearchCacheRepository) Purge(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM search_cache WHERE expires_at > 0 AND expires_at <= ?`, r.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge search cache: %w", err)
	}
	return result.RowsAffected()
}

// Clear deletes every entry and returns how many were removed.
func (r *SearchCacheRepository) Clear(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM search_cache`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear search cache: %w", err)
	}
	return result.RowsAffected()
}

// Count returns the number of stored entries, expired ones included.
func (r *SearchCacheRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count search cache: %w", err)
	}
	return n, nil
}

func (r *SearchCacheRepository) expired(expiresAt int64) bool {
	return expiresAt > 0 && expiresAt <= r.now().Unix()
}
