package config

import (
	"fmt"
	"time"
)

type PoolConfig struct {
	MaximumPoolSize        int           `yaml:"maximum-pool-size"`
	MinimumIdle            int           `yaml:"minimum-idle"`
	ConnectionTimeout      time.Duration `yaml:"connection-timeout"`
	IdleTimeout            time.Duration `yaml:"idle-timeout"`
	MaxLifetime            time.Duration `yaml:"max-lifetime"`
	LeakDetectionThreshold time.Duration `yaml:"leak-detection-threshold"`
}

const (
	_maximumPoolSizeDefault        = 20
	_minimumIdleDefault            = 5
	_connectionTimeoutDefault      = 20 * time.Second
	_idleTimeoutDefault            = 10 * time.Minute
	_maxLifetimeDefault            = 30 * time.Minute
	_leakDetectionThresholdDefault = 60 * time.Second
)

func (c *PoolConfig) Setup() {
	if c.MaximumPoolSize <= 0 {
		c.MaximumPoolSize = _maximumPoolSizeDefault
	}
	if c.MinimumIdle <= 0 {
		c.MinimumIdle = _minimumIdleDefault
	}
	if c.MinimumIdle > c.MaximumPoolSize {
		c.MinimumIdle = c.MaximumPoolSize
	}
	if c.ConnectionTimeout <= 0 {
		c.ConnectionTimeout = _connectionTimeoutDefault
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = _idleTimeoutDefault
	}
	if c.MaxLifetime <= 0 {
		c.MaxLifetime = _maxLifetimeDefault
	}
	if c.LeakDetectionThreshold <= 0 {
		c.LeakDetectionThreshold = _leakDetectionThresholdDefault
	}
}

type StatementCacheConfig struct {
	Enabled  *bool `yaml:"enabled"`
	Size     int   `yaml:"size"`
	SQLLimit int   `yaml:"sql-limit"`
}

const (
	_statementCacheSizeDefault     = 250
	_statementCacheSQLLimitDefault = 2048
)

func (c *StatementCacheConfig) Setup() {
	c.Enabled = boolOr(c.Enabled, true)
	if c.Size <= 0 {
		c.Size = _statementCacheSizeDefault
	}
	if c.SQLLimit <= 0 {
		c.SQLLimit = _statementCacheSQLLimitDefault
	}
}

type DatabaseConfig struct {
	QueryTimeout       time.Duration        `yaml:"query-timeout"`
	Primary            PoolConfig           `yaml:"primary"`
	ReadOnly           PoolConfig           `yaml:"read-only"`
	PreparedStatements StatementCacheConfig `yaml:"prepared-statements"`
}

const (
	_queryTimeoutDefault = 30 * time.Second
)

func (c *DatabaseConfig) Setup() {
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = _queryTimeoutDefault
	}
	c.Primary.Setup()
	c.ReadOnly.Setup()
	c.PreparedStatements.Setup()
}

type BNYConfig struct {
	Database DatabaseConfig `yaml:"database"`
}

type LFDConfig struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	BNY    BNYConfig    `yaml:"bny"`
}

const (
	_lfdPortDefault = "8081"
)

func (c *LFDConfig) ValidateAndSetup() error {
	c.Server.Setup(_lfdPortDefault)
	c.Log.Setup()
	c.BNY.Database.Setup()

	if c.BNY.Database.Primary.ConnectionTimeout > c.BNY.Database.QueryTimeout {
		return fmt.Errorf("connection timeout %s exceeds query timeout %s",
			c.BNY.Database.Primary.ConnectionTimeout, c.BNY.Database.QueryTimeout)
	}

	return nil
}

func LoadLFDConfig(filename string) (LFDConfig, error) {
	var cfg LFDConfig
	if err := loadYAML(filename, &cfg); err != nil {
		return cfg, err
	}

	if err := cfg.ValidateAndSetup(); err != nil {
		return cfg, fmt.Errorf("%w: can't setup cfg", err)
	}

	return cfg, nil
}
