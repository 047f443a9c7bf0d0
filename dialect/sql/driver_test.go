package sql

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelgen/dialect"
)

func TestOpenDB(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{dialect.Postgres, dialect.Postgres},
		{dialect.MySQL, dialect.MySQL},
		{dialect.SQLite, dialect.SQLite},
		{"sqlite3", dialect.SQLite},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			db, _, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			drv := OpenDB(tt.driver, db)
			assert.Equal(t, tt.want, drv.Dialect())
			assert.Same(t, db, drv.DB())
		})
	}
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open("oracle", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported dialect "oracle"`)
}

func TestDriverQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.Postgres, db)

	t.Run("scan", func(t *testing.T) {
		mock.ExpectQuery("SELECT table_name FROM information_schema.tables WHERE table_schema = \\$1").
			WithArgs("public").
			WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("ORDER").AddRow("STATUS"))

		rows := &Rows{}
		err := drv.Query(context.Background(), "SELECT table_name FROM information_schema.tables WHERE table_schema = $1", []any{"public"}, rows)
		require.NoError(t, err)
		var names []string
		require.NoError(t, ScanAll(rows, func(s ColumnScanner) error {
			var name string
			if err := s.Scan(&name); err != nil {
				return err
			}
			names = append(names, name)
			return nil
		}))
		assert.Equal(t, []string{"ORDER", "STATUS"}, names)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("scan error", func(t *testing.T) {
		mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
		rows := &Rows{}
		require.NoError(t, drv.Query(context.Background(), "SELECT n", []any{}, rows))
		boom := errors.New("boom")
		err := ScanAll(rows, func(ColumnScanner) error { return boom })
		require.ErrorIs(t, err, boom)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery("SELECT").WillReturnError(errors.New("database error"))
		err := drv.Query(context.Background(), "SELECT", []any{}, &Rows{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dialect/sql: query: database error")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid destination", func(t *testing.T) {
		err := drv.Query(context.Background(), "SELECT", []any{}, nil)
		require.Error(t, err)
		err = drv.Query(context.Background(), "SELECT", nil, &Rows{})
		require.Error(t, err)
	})
}

func TestDriverExec(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.MySQL, db)

	mock.ExpectExec("SET NAMES utf8mb4").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, drv.Exec(context.Background(), "SET NAMES utf8mb4", []any{}, nil))

	mock.ExpectExec("UPDATE").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 3))
	var res Result
	require.NoError(t, drv.Exec(context.Background(), "UPDATE t SET a = ?", []any{1}, &res))
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	mock.ExpectExec("DELETE").WillReturnError(errors.New("constraint violation"))
	require.Error(t, drv.Exec(context.Background(), "DELETE FROM t", []any{}, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.Postgres, db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectRollback()

	tx, err := drv.Tx(context.Background())
	require.NoError(t, err)
	rows := &Rows{}
	require.NoError(t, tx.Query(context.Background(), "SELECT id FROM t", []any{}, rows))
	require.NoError(t, rows.Close())
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectBegin().WillReturnError(errors.New("no connection"))
	_, err = drv.Tx(context.Background())
	require.Error(t, err)
}

func TestStatsDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var logs bytes.Buffer
	drv := NewStatsDriver(OpenDB(dialect.Postgres, db),
		WithSlowThreshold(time.Nanosecond),
		WithSlowQueryLog(slog.New(slog.NewTextHandler(&logs, nil))),
	)

	mock.ExpectQuery("SELECT 1").WillDelayFor(time.Millisecond).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec("SELECT 2").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	rows := &Rows{}
	require.NoError(t, drv.Query(context.Background(), "SELECT 1\n\tFROM dual", []any{}, rows))
	require.NoError(t, rows.Close())
	tx, err := drv.Tx(context.Background())
	require.NoError(t, err)
	require.Error(t, tx.Exec(context.Background(), "SELECT 2", []any{}, nil))
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())

	s := drv.Stats()
	assert.Equal(t, int64(1), s.Queries)
	assert.Equal(t, int64(1), s.Execs)
	assert.Equal(t, int64(1), s.Errors)
	assert.Equal(t, int64(2), s.Slow)
	assert.Equal(t, "SELECT 1 FROM dual", s.Slowest)
	assert.GreaterOrEqual(t, s.Duration, s.SlowestDuration)
	assert.Contains(t, logs.String(), `msg="slow query"`)
	assert.Contains(t, logs.String(), `query="SELECT 1 FROM dual"`)
}

func TestCompact(t *testing.T) {
	assert.Equal(t, "SELECT a FROM t", compact("  SELECT a\n  FROM t\n"))
	long := compact("SELECT " + strings.Repeat("x", 200))
	assert.Len(t, long, 123)
	assert.True(t, strings.HasSuffix(long, "..."))
}
