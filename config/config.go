// Package config loads database connection settings from YAML files and
// maps them to a registered dialect name plus a DSN.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Database describes one connection. Either DSN is set explicitly, or it
// is assembled from the individual fields.
type Database struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	// Path is the database file for sqlite; ":memory:" works too.
	Path string `yaml:"path"`
	DSN  string `yaml:"dsn"`
}

type Config struct {
	Database Database `yaml:"database"`
}

// Load reads a YAML config from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// NormalizeDriver maps common driver aliases to the canonical dialect
// names.
func NormalizeDriver(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "postgresql", "pg", "postgres":
		return "postgres"
	case "mysql", "mariadb":
		return "mysql"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return strings.ToLower(d)
	}
}

// DriverAndDSN returns the dialect name and DSN for this connection.
func (d Database) DriverAndDSN() (string, string, error) {
	driver := NormalizeDriver(d.Driver)
	if d.DSN != "" {
		return driver, d.DSN, nil
	}
	switch driver {
	case "sqlite":
		path := d.Path
		if path == "" {
			path = ":memory:"
		}
		return driver, path, nil
	case "postgres":
		return driver, fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			d.User, d.Password, d.Host, d.Port, d.Name), nil
	case "mysql":
		// parseTime makes the driver return DATETIME columns as
		// time.Time values.
		return driver, fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			d.User, d.Password, d.Host, d.Port, d.Name), nil
	}
	return "", "", fmt.Errorf("unsupported driver %q", d.Driver)
}
