package config

import (
	"time"
)

// ModelConfig represents the configuration for the model artifacts
type ModelConfig struct {
	VectorizerPath string
	ClassifierPath string
	SpamLabel      int
	LoadTimeout    time.Duration
	S3Region       string
}

// ServerConfig represents the configuration for the front end
type ServerConfig struct {
	FrontendType  string
	ListenAddress string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	BodyLimit     string
}

// CacheConfig represents the configuration for the prediction cache
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
	RedisAddress     string
	RedisPrefix      string
}

// GetModel returns the model artifact configuration
func (c *Config) GetModel() (ModelConfig, error) {
	timeout, err := c.GetDuration("model.load_timeout")
	if err != nil {
		return ModelConfig{}, err
	}
	return ModelConfig{
		VectorizerPath: c.GetString("model.vectorizer_path"),
		ClassifierPath: c.GetString("model.classifier_path"),
		SpamLabel:      c.GetInt("model.spam_label"),
		LoadTimeout:    timeout,
		S3Region:       c.GetString("model.s3_region"),
	}, nil
}

// GetServer returns the front end configuration
func (c *Config) GetServer() (ServerConfig, error) {
	readTimeout, err := c.GetDuration("server.read_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	writeTimeout, err := c.GetDuration("server.write_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	return ServerConfig{
		FrontendType:  c.GetString("server.frontend_type"),
		ListenAddress: c.GetString("server.listen_address"),
		ReadTimeout:   readTimeout,
		WriteTimeout:  writeTimeout,
		BodyLimit:     c.GetString("server.body_limit"),
	}, nil
}

// GetCache returns the prediction cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, err
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}
	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
		RedisAddress:     c.GetString("cache.redis_address"),
		RedisPrefix:      c.GetString("cache.redis_prefix"),
	}, nil
}
