package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/sms-spam-detector/internal/core"
	"go.uber.org/zap"
)

// mysqlSchema keys rows on the SHA-256 of the normalized text, so keys of any
// length are indexed whole. cache_key compares byte-wise, keeping "café" and
// "cafe" apart.
const mysqlSchema = `
	CREATE TABLE IF NOT EXISTS prediction_cache (
		key_hash CHAR(64) CHARACTER SET ascii COLLATE ascii_bin NOT NULL,
		cache_key MEDIUMTEXT CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL,
		verdict TINYINT NOT NULL,
		label INT NOT NULL,
		model_used VARCHAR(255) NOT NULL,
		last_seen BIGINT NOT NULL,
		expires_at BIGINT NOT NULL,
		PRIMARY KEY (key_hash),
		INDEX idx_expires_at (expires_at)
	)
`

// MySQLCache is a MySQL implementation of the CacheRepository interface
type MySQLCache struct {
	*sqlCache
}

var _ core.CacheRepository = (*MySQLCache)(nil)

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(mysqlSchema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLCache{sqlCache: newSQLCache(db, "mysql", logger, cleanupFreq, true)}, nil
}
