package database

import (
	"cmp"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
)

type Config struct {
	Dialect     Dialect
	Host        string
	Port        string
	Username    string
	Password    string
	DBName      string
	SSLMode     string
	Location    *time.Location
	DialTimeout time.Duration
}

// NewConfigFromEnv reads DATABASE_URL, DATABASE_USERNAME and DATABASE_PASSWORD. The second
// result is built from DATABASE_READONLY_URL with the same credentials and is nil when that
// variable is unset.
func NewConfigFromEnv() (*Config, *Config, error) {
	username := os.Getenv("DATABASE_USERNAME")
	password := os.Getenv("DATABASE_PASSWORD")

	primary, err := ParseURL(os.Getenv("DATABASE_URL"), username, password)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: can't parse DATABASE_URL", err)
	}

	raw := os.Getenv("DATABASE_READONLY_URL")
	if raw == "" {
		return primary, nil, nil
	}
	readOnly, err := ParseURL(raw, username, password)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: can't parse DATABASE_READONLY_URL", err)
	}

	return primary, readOnly, nil
}

// ParseURL accepts JDBC style URLs (jdbc:mysql://host:3306/db, jdbc:postgresql://host/db) and
// their plain forms. Credentials in the URL win over the ones passed in.
func ParseURL(raw, username, password string) (*Config, error) {
	c := &Config{Username: username, Password: password}
	if raw == "" {
		c.Dialect = MySQL
		return c.Setup(), nil
	}

	u, err := url.Parse(strings.TrimPrefix(strings.TrimSpace(raw), "jdbc:"))
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "mysql", "mariadb":
		c.Dialect = MySQL
	case "postgres", "postgresql":
		c.Dialect = Postgres
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}

	c.Host = u.Hostname()
	c.Port = u.Port()
	c.DBName = strings.TrimPrefix(u.Path, "/")
	if u.User != nil {
		c.Username = cmp.Or(u.User.Username(), c.Username)
		if p, ok := u.User.Password(); ok {
			c.Password = p
		}
	}

	q := u.Query()
	c.SSLMode = q.Get("sslmode")
	if tz := q.Get("serverTimezone"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid serverTimezone", err)
		}
		c.Location = loc
	}
	if ms := q.Get("connectTimeout"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 {
			c.DialTimeout = time.Duration(v) * time.Millisecond
		}
	}

	return c.Setup(), nil
}

func (c *Config) Setup() *Config {
	const (
		defaultHost         = "localhost"
		defaultMySQLPort    = "3306"
		defaultPostgresPort = "5432"
		defaultUsername     = "root"
		defaultDBName       = "investing"
		defaultSSLMode      = "disable"
		defaultDialTimeout  = 10 * time.Second
	)

	c.Dialect = cmp.Or(c.Dialect, MySQL)
	defaultPort := defaultMySQLPort
	if c.Dialect == Postgres {
		defaultPort = defaultPostgresPort
	}

	c.Host = cmp.Or(c.Host, defaultHost)
	c.Port = cmp.Or(c.Port, defaultPort)
	if _, err := strconv.Atoi(c.Port); err != nil {
		c.Port = defaultPort
	}
	c.Username = cmp.Or(c.Username, defaultUsername)
	c.DBName = cmp.Or(c.DBName, defaultDBName)
	c.SSLMode = cmp.Or(c.SSLMode, defaultSSLMode)
	c.DialTimeout = cmp.Or(c.DialTimeout, defaultDialTimeout)
	if c.Location == nil {
		c.Location = time.Local
	}

	return c
}

func (c *Config) DriverName() string {
	return string(c.Dialect)
}

// String renders the driver DSN.
func (c *Config) String() string {
	if c.Dialect == Postgres {
		return fmt.Sprintf(
			"host=%s port=%s user=%s dbname=%s password=%s sslmode=%s connect_timeout=%d",
			c.Host, c.Port, c.Username, c.DBName, c.Password, c.SSLMode, int(c.DialTimeout.Seconds()),
		)
	}

	mc := mysql.NewConfig()
	mc.User = c.Username
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, c.Port)
	mc.DBName = c.DBName
	mc.ParseTime = true
	mc.Loc = c.Location
	mc.Timeout = c.DialTimeout
	return mc.FormatDSN()
}

// Redacted is String without the password, for logs.
func (c *Config) Redacted() string {
	cp := *c
	if cp.Password != "" {
		cp.Password = "***"
	}
	return cp.String()
}
