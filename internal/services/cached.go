package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunename/internal/cache"
	"github.com/desertthunder/tunename/internal/models"
	"github.com/desertthunder/tunename/internal/shared"
)

// CachedSearcher serves repeated searches from a [cache.Cache].
//
// Only successful searches are stored. Cache errors are logged and the search falls through to
// the wrapped searcher, so a broken cache never fails a build.
type CachedSearcher struct {
	searcher SongSearcher
	cache    cache.Cache
	ttl      time.Duration
	logger   *log.Logger
}

// NewCachedSearcher wraps searcher with c. A non-positive ttl stores entries without expiry.
func NewCachedSearcher(searcher SongSearcher, c cache.Cache, ttl time.Duration, logger *log.Logger) *CachedSearcher {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &CachedSearcher{searcher: searcher, cache: c, ttl: ttl, logger: logger}
}

// SearchKey is the cache key for a search. Terms are compared after [shared.NormalizeTerm].
func SearchKey(term string, prefs models.SongPreferences, count int) string {
	return fmt.Sprintf("search:%s:%s:%d", shared.NormalizeTerm(term), prefs.Key(), count)
}

func (c *CachedSearcher) SearchSongs(ctx context.Context, term string, prefs models.SongPreferences, count int) ([]models.Song, error) {
	key := SearchKey(term, prefs, count)

	if data, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("search cache read failed", "key", key, "error", err)
	} else if data != nil {
		var songs []models.Song
		if err := json.Unmarshal(data, &songs); err == nil {
			c.logger.Debug("search cache hit", "key", key, "songs", len(songs))
			return songs, nil
		}
		c.logger.Warn("discarding corrupt search cache entry", "key", key)
		_ = c.cache.Delete(ctx, key)
	}

	songs, err := c.searcher.SearchSongs(ctx, term, prefs, count)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(songs)
	if err != nil {
		return songs, nil
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("search cache write failed", "key", key, "error", err)
	}
	return songs, nil
}
