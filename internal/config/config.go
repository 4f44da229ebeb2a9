package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

func (c *ServerConfig) Setup(defaultPort string) {
	if p := os.Getenv("SERVER_PORT"); p != "" {
		c.Port = p
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		c.Port = defaultPort
	}
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func (c *LogConfig) Setup() {
	if l := os.Getenv("LOG_LEVEL"); l != "" {
		c.Level = l
	}
	if c.Level == "" {
		c.Level = "info"
	}
}

// loadYAML reads filename into cfg. A missing file leaves cfg untouched so defaults and
// environment still apply.
func loadYAML(filename string, cfg any) error {
	if filename == "" {
		return nil
	}
	input, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: can't read file", err)
	}

	if err := yaml.Unmarshal(input, cfg); err != nil {
		return fmt.Errorf("%w: can't unmarshal config", err)
	}

	return nil
}

func boolOr(v *bool, def bool) *bool {
	if v == nil {
		return &def
	}
	return v
}

func envBool(key string, dst **bool) error {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: invalid %s", err, key)
	}
	*dst = &v
	return nil
}
