package database

import (
	"context"
	"log/slog"
	"time"

	"datamodeler/internal/metrics"
)

// Inspector implements Catalog by opening a fresh Scanner per call.
// The connection is released before the call returns, on every path.
type Inspector struct {
	schema string
	open   Opener
	logger *slog.Logger
}

func NewInspector(schema string, open Opener, logger *slog.Logger) *Inspector {
	if schema == "" {
		schema = "public"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Inspector{schema: schema, open: open, logger: logger}
}

func (i *Inspector) ListTables(ctx context.Context, conn DatabaseConfig) (tables []string, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordCatalogOperation("list_tables", DriverLabel(conn.Driver), time.Since(start), err)
	}()

	scanner := NewScanner(i.open)
	if err := scanner.Connect(ctx, conn); err != nil {
		return nil, err
	}
	defer scanner.Disconnect()

	tables, err = scanner.ListTables(ctx, i.schema)
	if err != nil {
		return nil, err
	}

	i.logger.Debug("listed tables", "conn", conn.String(), "schema", i.schema, "count", len(tables))
	return tables, nil
}

func (i *Inspector) DescribeTable(ctx context.Context, conn DatabaseConfig, tableName string) (columns []Column, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordCatalogOperation("describe_table", DriverLabel(conn.Driver), time.Since(start), err)
	}()

	scanner := NewScanner(i.open)
	if err := scanner.Connect(ctx, conn); err != nil {
		return nil, err
	}
	defer scanner.Disconnect()

	columns, err = scanner.DescribeTable(ctx, i.schema, tableName)
	if err != nil {
		return nil, err
	}

	i.logger.Debug("described table", "conn", conn.String(), "table", tableName, "columns", len(columns))
	return columns, nil
}
