package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Column is one catalog column as exposed to callers.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Catalog lists tables and describes columns for a resolved connection.
type Catalog interface {
	ListTables(ctx context.Context, conn DatabaseConfig) ([]string, error)
	DescribeTable(ctx context.Context, conn DatabaseConfig, tableName string) ([]Column, error)
}

// DatabaseConfig is a fully resolved connection descriptor.
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	Username string
	Password string
	Database string
	SSLMode  string
}

// String hides the password so descriptors can be logged.
func (c DatabaseConfig) String() string {
	return fmt.Sprintf("%s://%s@%s:%d/%s", c.Driver, c.Username, c.Host, c.Port, c.Database)
}

// ConnectionInput is the caller-supplied, possibly partial, connection record.
type ConnectionInput struct {
	Driver   string `json:"driver,omitempty"`
	Host     string `json:"host,omitempty"`
	Port     Port   `json:"port,omitempty"`
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
	Database string `json:"database,omitempty"`
	SSLMode  string `json:"sslmode,omitempty"`
}

// Port accepts a JSON number, a numeric string, null or "".
type Port int

func (p *Port) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}

	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*p = 0
			return nil
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("port must be an integer, got %s", string(data))
	}
	*p = Port(n)
	return nil
}
