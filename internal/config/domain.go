package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

type LFDAPIConfig struct {
	BaseURL            string        `yaml:"base-url"`
	MaxPageSize        int           `yaml:"max-page-size"`
	Timeout            time.Duration `yaml:"timeout"`
	RateLimit          int           `yaml:"rate-limit"` // requests per second, 0 is unlimited
	UserID             string        `yaml:"user-id"`
	AdvisorPlaceholder string        `yaml:"advisor-placeholder"`
}

const (
	_lfdBaseURLDefault            = "http://localhost:8081"
	_lfdMaxPageSizeDefault        = 100
	_lfdTimeoutDefault            = 10 * time.Second
	_lfdUserIDDefault             = "advisor-workspace"
	_lfdAdvisorPlaceholderDefault = "advisor-id-placeholder"
)

func (c *LFDAPIConfig) Setup() error {
	if u := os.Getenv("LFD_API_BASE_URL"); u != "" {
		c.BaseURL = u
	}
	if c.BaseURL == "" {
		c.BaseURL = _lfdBaseURLDefault
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("%w: invalid lfd base url", err)
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = _lfdMaxPageSizeDefault
	}
	if c.Timeout <= 0 {
		c.Timeout = _lfdTimeoutDefault
	}
	if c.RateLimit < 0 {
		c.RateLimit = 0
	}
	if c.UserID == "" {
		c.UserID = _lfdUserIDDefault
	}
	if c.AdvisorPlaceholder == "" {
		c.AdvisorPlaceholder = _lfdAdvisorPlaceholderDefault
	}
	return nil
}

type CacheConfig struct {
	Enabled    *bool         `yaml:"enabled"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max-entries"`
}

const (
	_cacheTTLMax            = 300 * time.Second
	_cacheMaxEntriesDefault = 10_000
)

func (c *CacheConfig) Setup() {
	c.Enabled = boolOr(c.Enabled, true)
	if c.TTL <= 0 || c.TTL > _cacheTTLMax {
		c.TTL = _cacheTTLMax
	}
	if c.MaxEntries <= 0 {
		c.MaxEntries = _cacheMaxEntriesDefault
	}
}

type WorkerConfig struct {
	Core      int           `yaml:"core"`
	Max       int           `yaml:"max"`
	Queue     int           `yaml:"queue"`
	KeepAlive time.Duration `yaml:"keep-alive"`
}

const (
	_keepAliveDefault = 60 * time.Second
)

func (c *WorkerConfig) Setup(core, maxWorkers, queue int) {
	if c.Core <= 0 {
		c.Core = core
	}
	if c.Max <= 0 {
		c.Max = maxWorkers
	}
	if c.Max < c.Core {
		c.Max = c.Core
	}
	if c.Queue <= 0 {
		c.Queue = queue
	}
	if c.KeepAlive <= 0 {
		c.KeepAlive = _keepAliveDefault
	}
}

type WorkersConfig struct {
	General WorkerConfig `yaml:"general"`
	Export  WorkerConfig `yaml:"export"`
}

type MockConfig struct {
	Enabled *bool `yaml:"enabled"`
}

type AppConfig struct {
	Mock MockConfig `yaml:"mock"`
}

type LFDClientConfig struct {
	API LFDAPIConfig `yaml:"api"`
}

type DomainConfig struct {
	Server  ServerConfig    `yaml:"server"`
	Log     LogConfig       `yaml:"log"`
	App     AppConfig       `yaml:"app"`
	LFD     LFDClientConfig `yaml:"lfd"`
	Cache   CacheConfig     `yaml:"cache"`
	Workers WorkersConfig   `yaml:"workers"`
}

const (
	_domainPortDefault = "8080"
)

func (c *DomainConfig) ValidateAndSetup() error {
	c.Server.Setup(_domainPortDefault)
	c.Log.Setup()

	if err := envBool("APP_MOCK_ENABLED", &c.App.Mock.Enabled); err != nil {
		return err
	}
	c.App.Mock.Enabled = boolOr(c.App.Mock.Enabled, true)

	if err := c.LFD.API.Setup(); err != nil {
		return fmt.Errorf("%w: can't setup lfd api", err)
	}

	c.Cache.Setup()
	c.Workers.General.Setup(10, 50, 100)
	c.Workers.Export.Setup(5, 20, 50)

	return nil
}

func (c *DomainConfig) MockEnabled() bool {
	return c.App.Mock.Enabled != nil && *c.App.Mock.Enabled
}

func LoadDomainConfig(filename string) (DomainConfig, error) {
	var cfg DomainConfig
	if err := loadYAML(filename, &cfg); err != nil {
		return cfg, err
	}

	if err := cfg.ValidateAndSetup(); err != nil {
		return cfg, fmt.Errorf("%w: can't setup cfg", err)
	}

	return cfg, nil
}
