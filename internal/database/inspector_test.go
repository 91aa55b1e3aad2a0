package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datamodeler/internal/metrics"
)

func TestInspector_ListTablesReleasesConnection(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectPing()
	mock.ExpectQuery(postgresTablesQuery).WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("users").AddRow("orders"))
	mock.ExpectClose()

	opener := &mockOpener{db: db}
	inspector := NewInspector("", opener.open, nil)

	tables, err := inspector.ListTables(context.Background(), Resolve(ConnectionInput{Database: "sales"}, testDefaults))
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "orders"}, tables)
	assert.Equal(t, "postgres", opener.driver)
	assert.Equal(t, "postgres://u:p@h:5432/sales?sslmode=disable", opener.dsn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInspector_ListTablesReleasesConnectionOnQueryError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectPing()
	mock.ExpectQuery(postgresTablesQuery).WithArgs("analytics").
		WillReturnError(errors.New("canceling statement due to statement timeout"))
	mock.ExpectClose()

	inspector := NewInspector("analytics", (&mockOpener{db: db}).open, nil)

	_, err := inspector.ListTables(context.Background(), testDefaults)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statement timeout")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInspector_DescribeTableReleasesConnection(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectPing()
	mock.ExpectQuery(postgresColumnsQuery).WithArgs("public", "t").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type"}).AddRow("id", "int").AddRow("name", "text"))
	mock.ExpectClose()

	inspector := NewInspector("public", (&mockOpener{db: db}).open, nil)

	columns, err := inspector.DescribeTable(context.Background(), testDefaults, "t")
	require.NoError(t, err)
	assert.Equal(t, []Column{{Name: "id", Type: "int"}, {Name: "name", Type: "text"}}, columns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInspector_ConnectFailure(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectPing().WillReturnError(errors.New(`password authentication failed for user "u"`))
	mock.ExpectClose()

	inspector := NewInspector("public", (&mockOpener{db: db}).open, nil)

	_, err := inspector.DescribeTable(context.Background(), testDefaults, "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password authentication failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInspector_UnknownDriversShareOneMetricSeries(t *testing.T) {
	inspector := NewInspector("public", nil, nil)

	list := func(from, to int) {
		for i := from; i < to; i++ {
			conn := testDefaults
			conn.Driver = fmt.Sprintf("drv%d", i)
			_, err := inspector.ListTables(context.Background(), conn)
			require.ErrorIs(t, err, ErrUnsupportedDriver)
		}
	}

	before := testutil.CollectAndCount(metrics.CatalogOperationDuration)
	list(0, 20)
	afterFirst := testutil.CollectAndCount(metrics.CatalogOperationDuration)
	assert.LessOrEqual(t, afterFirst-before, 1)

	list(20, 50)
	assert.Equal(t, afterFirst, testutil.CollectAndCount(metrics.CatalogOperationDuration))
}
