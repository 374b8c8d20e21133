package database

import (
	"fmt"
	"strings"
)

// Driver names a storage backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

func (d Driver) String() string {
	return string(d)
}

// ParseDriver maps a DATABASE_DRIVER value to a Driver. Empty and "auto"
// return the empty Driver, leaving the choice to the connection URL.
func ParseDriver(name string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return "", nil
	case "postgres", "postgresql", "pg":
		return DriverPostgres, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", name)
	}
}

// DetectDriver picks the backend for a DATABASE_URL. Postgres needs a
// postgres:// or postgresql:// scheme. An empty URL, a sqlite:// or file:
// URL and a bare path all select SQLite; any other scheme is rejected.
func DetectDriver(url string) (Driver, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres, nil
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "file:"):
		return DriverSQLite, nil
	case strings.Contains(url, "://"):
		return "", fmt.Errorf("unsupported database URL scheme in %q", redactURL(url))
	default:
		return DriverSQLite, nil
	}
}

// redactURL keeps the scheme and host of url and drops credentials.
func redactURL(url string) string {
	scheme, rest, _ := strings.Cut(url, "://")
	if _, host, ok := strings.Cut(rest, "@"); ok {
		rest = host
	}
	return scheme + "://" + rest
}
