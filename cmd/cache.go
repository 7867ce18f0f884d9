package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tunename/internal/repositories"
	"github.com/desertthunder/tunename/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheStatus reports the configured backend and whether it is reachable.
func (r *Runner) CacheStatus(ctx context.Context, cmd *cli.Command) error {
	c, err := r.searchCache()
	if err != nil {
		return err
	}
	if c == nil {
		r.writePlain("Search cache disabled (cache.backend = none)\n")
		return nil
	}

	r.writePlain("Backend: %s\n", r.config.Cache.Backend)
	r.writePlain("TTL:     %s\n", r.config.Cache.TTL())
	if err := c.Health(ctx); err != nil {
		r.writePlain("Health:  ✗ %v\n", err)
		return nil
	}
	r.writePlain("Health:  ✓ ok\n")

	if repo, ok := c.(*repositories.SearchCacheRepository); ok {
		n, err := repo.Count(ctx)
		if err != nil {
			return err
		}
		r.writePlain("Entries: %d\n", n)
	}
	return nil
}

// CachePurge removes expired entries from the sqlite cache.
func (r *Runner) CachePurge(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.sqliteCache("purge")
	if err != nil {
		return err
	}
	n, err := repo.Purge(ctx)
	if err != nil {
		return err
	}
	r.writePlain("✓ Removed %d expired entries\n", n)
	return nil
}

// CacheClear removes every entry from the sqlite cache.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.sqliteCache("clear")
	if err != nil {
		return err
	}
	n, err := repo.Clear(ctx)
	if err != nil {
		return err
	}
	r.writePlain("✓ Removed %d entries\n", n)
	return nil
}

// sqliteCache returns the sqlite cache. Valkey expires entries itself, so maintenance
// commands are not implemented for it.
func (r *Runner) sqliteCache(operation string) (*repositories.SearchCacheRepository, error) {
	c, err := r.searchCache()
	if err != nil {
		return nil, err
	}
	repo, ok := c.(*repositories.SearchCacheRepository)
	if !ok {
		return nil, fmt.Errorf("%w: cache %s for backend %q", shared.ErrNotImplemented, operation, r.config.Cache.Backend)
	}
	return repo, nil
}
