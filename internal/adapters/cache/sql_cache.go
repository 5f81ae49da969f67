package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mikey/sms-spam-detector/internal/core"
	"go.uber.org/zap"
)

const cacheTable = "prediction_cache"

// sqlCache holds the queries shared by the SQL backends. Timestamps are
// stored as unix seconds so both dialects compare them the same way.
// With hashKeys the table is keyed on key_hash, the SHA-256 of cache_key.
type sqlCache struct {
	db          *sql.DB
	name        string
	hashKeys    bool
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
}

func newSQLCache(db *sql.DB, name string, logger *zap.Logger, cleanupFreq time.Duration, hashKeys bool) *sqlCache {
	c := &sqlCache{
		db:          db,
		name:        name,
		hashKeys:    hashKeys,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
		now:         time.Now,
	}
	if cleanupFreq > 0 {
		go c.startCleanupTask()
	}
	return c
}

// keyHash returns the hex SHA-256 of a cache key
func keyHash(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// match selects the row for a key
func (c *sqlCache) match(key string) sq.Eq {
	if c.hashKeys {
		return sq.Eq{"key_hash": keyHash(key), "cache_key": key}
	}
	return sq.Eq{"cache_key": key}
}

// Get retrieves a live cached entry
func (c *sqlCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	query, args, err := sq.Select("cache_key", "verdict", "label", "model_used", "last_seen", "expires_at").
		From(cacheTable).
		Where(c.match(key)).
		Where(sq.Gt{"expires_at": c.now().Unix()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build cache query: %w", err)
	}

	var (
		entry               core.CacheEntry
		verdict             int
		lastSeen, expiresAt int64
	)
	err = c.db.QueryRowContext(ctx, query, args...).
		Scan(&entry.Key, &verdict, &entry.Label, &entry.ModelUsed, &lastSeen, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	entry.Verdict = core.Verdict(verdict)
	entry.LastSeen = time.Unix(lastSeen, 0)
	entry.ExpiresAt = time.Unix(expiresAt, 0)
	return &entry, nil
}

// Set stores a cache entry, replacing any existing one
func (c *sqlCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	columns := []string{"cache_key", "verdict", "label", "model_used", "last_seen", "expires_at"}
	values := []any{entry.Key, int(entry.Verdict), entry.Label, entry.ModelUsed, entry.LastSeen.Unix(), entry.ExpiresAt.Unix()}
	if c.hashKeys {
		columns = append(columns, "key_hash")
		values = append(values, keyHash(entry.Key))
	}

	query, args, err := sq.Replace(cacheTable).
		Columns(columns...).
		Values(values...).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build cache insert: %w", err)
	}

	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *sqlCache) Delete(ctx context.Context, key string) error {
	query, args, err := sq.Delete(cacheTable).Where(c.match(key)).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build cache delete: %w", err)
	}

	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *sqlCache) Cleanup(ctx context.Context) error {
	query, args, err := sq.Delete(cacheTable).Where(sq.LtOrEq{"expires_at": c.now().Unix()}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build cleanup query: %w", err)
	}

	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *sqlCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database connection
func (c *sqlCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.String("backend", c.name), zap.Error(err))
		}
	})
}
