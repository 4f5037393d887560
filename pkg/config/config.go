package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DBConfig describes the database to inspect. For sqlite only Path is
// needed; the server dialects take host/port/credentials or an explicit DSN.
type DBConfig struct {
	Type         string `yaml:"type" json:"type"`
	Path         string `yaml:"path" json:"path"` // sqlite database file
	Host         string `yaml:"host" json:"host"`
	Port         int    `yaml:"port" json:"port"`
	Username     string `yaml:"username" json:"username"`
	Password     string `yaml:"password" json:"password"`
	DatabaseName string `yaml:"database_name" json:"database_name"`
	DSN          string `yaml:"dsn" json:"dsn"` // optional explicit DSN
}

type AppConfig struct {
	Database DBConfig `yaml:"database" json:"database"`
	// TimeoutSec bounds connection open and the queries of one operation.
	TimeoutSec int `yaml:"timeout_sec" json:"timeout_sec"`
}

// DefaultTimeoutSec is used when the config and flags specify no timeout.
const DefaultTimeoutSec = 10

// LoadFile loads YAML config from path.
func LoadFile(path string) (AppConfig, error) {
	var cfg AppConfig
	f, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(f, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// NormalizeDriver maps common aliases to canonical driver keys.
func NormalizeDriver(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "postgresql", "pg", "postgres":
		return "postgres"
	case "mysql", "mariadb":
		return "mysql"
	case "sqlite", "sqlite3", "":
		return "sqlite"
	case "mssql", "sqlserver":
		return "sqlserver"
	case "godror", "oracle":
		return "godror"
	default:
		return strings.ToLower(d)
	}
}

// BuildDriverAndDSN produces a driver name and DSN string for supported DB
// types. The sqlite DSN opens the file read-only; the inspector never writes.
func BuildDriverAndDSN(db DBConfig) (driver string, dsn string, err error) {
	t := NormalizeDriver(db.Type)

	if db.DSN != "" {
		return t, db.DSN, nil
	}

	switch t {
	case "postgres":
		driver = "postgres"
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "mysql":
		driver = "mysql"
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "sqlite":
		driver = "sqlite"
		if db.Path == "" {
			return "", "", fmt.Errorf("sqlite needs a database file path")
		}
		dsn = fmt.Sprintf("file:%s?mode=ro", db.Path)
	case "sqlserver":
		driver = "sqlserver"
		dsn = fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "godror":
		driver = "godror"
		// simple EZCONNECT style; may need adjustments per environment
		dsn = fmt.Sprintf("%s/%s@%s:%d/%s",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	default:
		err = fmt.Errorf("unsupported database type: %s", db.Type)
	}
	return
}
