package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

var (
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	ErrTableNotFound     = errors.New("table not found")
)

// Opener matches sql.Open.
type Opener func(driverName, dataSourceName string) (*sql.DB, error)

const (
	postgresTablesQuery = `SELECT table_name FROM information_schema.tables WHERE table_schema = $1`

	postgresColumnsQuery = `SELECT column_name, data_type FROM information_schema.columns WHERE table_schema = $1 AND table_name = $2 ORDER BY ordinal_position`

	mysqlTablesQuery = `SELECT table_name FROM information_schema.tables WHERE table_schema = ?`

	mysqlColumnsQuery = `SELECT column_name, data_type FROM information_schema.columns WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position`

	postgresTableExistsQuery = `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2`

	mysqlTableExistsQuery = `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = ? AND table_name = ?`
)

type dialect struct {
	driver       string
	tablesQuery  string
	columnsQuery string
	existsQuery  string
	dsn          func(DatabaseConfig) string
	// schema maps the configured schema to the catalog's table_schema value.
	schema func(schema string, config DatabaseConfig) string
}

var dialects = map[string]dialect{
	"postgres": {
		driver:       "postgres",
		tablesQuery:  postgresTablesQuery,
		columnsQuery: postgresColumnsQuery,
		existsQuery:  postgresTableExistsQuery,
		dsn:          postgresDSN,
		schema:       func(schema string, _ DatabaseConfig) string { return schema },
	},
	"pgx": {
		driver:       "pgx",
		tablesQuery:  postgresTablesQuery,
		columnsQuery: postgresColumnsQuery,
		existsQuery:  postgresTableExistsQuery,
		dsn:          postgresDSN,
		schema:       func(schema string, _ DatabaseConfig) string { return schema },
	},
	// MySQL has no schemas inside a database; the database is the schema.
	"mysql": {
		driver:       "mysql",
		tablesQuery:  mysqlTablesQuery,
		columnsQuery: mysqlColumnsQuery,
		existsQuery:  mysqlTableExistsQuery,
		dsn:          mysqlDSN,
		schema:       func(_ string, config DatabaseConfig) string { return config.Database },
	},
}

// DriverLabel returns driver when it names a known dialect and
// "unsupported" otherwise, so caller input never becomes a metric label.
func DriverLabel(driver string) string {
	if _, ok := dialects[driver]; ok {
		return driver
	}
	return "unsupported"
}

func postgresDSN(config DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(config.Username, config.Password),
		Host:   net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		Path:   "/" + config.Database,
	}
	if config.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {config.SSLMode}}.Encode()
	}
	return u.String()
}

func mysqlDSN(config DatabaseConfig) string {
	c := mysql.NewConfig()
	c.User = config.Username
	c.Passwd = config.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	c.DBName = config.Database
	return c.FormatDSN()
}

// Scanner holds one transient connection to a target database.
type Scanner struct {
	db      *sql.DB
	dialect dialect
	config  DatabaseConfig
	open    Opener
}

func NewScanner(open Opener) *Scanner {
	if open == nil {
		open = sql.Open
	}
	return &Scanner{open: open}
}

func (s *Scanner) Connect(ctx context.Context, config DatabaseConfig) error {
	d, ok := dialects[config.Driver]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedDriver, config.Driver)
	}

	db, err := s.open(d.driver, d.dsn(config))
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("error pinging database: %w", err)
	}

	s.db = db
	s.dialect = d
	s.config = config
	return nil
}

func (s *Scanner) Disconnect() {
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}
}

// ListTables returns table names in the order the catalog yields them.
func (s *Scanner) ListTables(ctx context.Context, schema string) ([]string, error) {
	if s.db == nil {
		return nil, errors.New("database connection not established")
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.tablesQuery, s.dialect.schema(schema, s.config))
	if err != nil {
		return nil, fmt.Errorf("error querying tables: %w", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("error scanning table name: %w", err)
		}
		tables = append(tables, tableName)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading tables: %w", err)
	}

	return tables, nil
}

// DescribeTable returns the columns of tableName ordered by ordinal position.
// An existing table without columns yields an empty, non-nil slice.
// The table name is only ever sent as a bound parameter.
func (s *Scanner) DescribeTable(ctx context.Context, schema, tableName string) ([]Column, error) {
	if s.db == nil {
		return nil, errors.New("database connection not established")
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.columnsQuery, s.dialect.schema(schema, s.config), tableName)
	if err != nil {
		return nil, fmt.Errorf("error querying columns of %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, fmt.Errorf("error scanning column of %s: %w", tableName, err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading columns of %s: %w", tableName, err)
	}

	if len(columns) == 0 {
		// Zero-column tables are legal in postgres.
		var count int
		if err := s.db.QueryRowContext(ctx, s.dialect.existsQuery, s.dialect.schema(schema, s.config), tableName).Scan(&count); err != nil {
			return nil, fmt.Errorf("error looking up table %s: %w", tableName, err)
		}
		if count == 0 {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, tableName)
		}
		return []Column{}, nil
	}

	return columns, nil
}
