package importer

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/syssam/modelgen/dialect"
	"github.com/syssam/modelgen/dialect/sql"
)

// table is a database table as read from the catalog.
type table struct {
	Name       string
	Comment    string
	Columns    []*column
	PrimaryKey []string
	Foreign    []*foreignKey
	Unique     [][]string
}

func (t *table) column(name string) *column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// unique reports whether the columns alone make a unique key of t.
func (t *table) unique(columns ...string) bool {
	if slices.Equal(t.PrimaryKey, columns) {
		return true
	}
	return slices.ContainsFunc(t.Unique, func(u []string) bool { return slices.Equal(u, columns) })
}

type column struct {
	Name     string
	Type     string
	Length   *int
	Scale    *int
	Nullable bool
	Comment  string
}

// textual reports whether the column holds text.
func (c *column) textual() bool {
	return strings.Contains(c.Type, "char") || strings.Contains(c.Type, "text")
}

type foreignKey struct {
	Name       string
	Columns    []string
	RefTable   string
	RefColumns []string
}

// Constraint types, as named by information_schema.
const (
	typePrimaryKey = "PRIMARY KEY"
	typeForeignKey = "FOREIGN KEY"
	typeUnique     = "UNIQUE"
)

// constraintRow is one column of a constraint. RefTable and RefColumn are
// only set for foreign keys.
type constraintRow struct {
	Table, Constraint, Type, Column, RefTable, RefColumn string
}

// catalog reads the tables of a database.
type catalog interface {
	tables(ctx context.Context, q dialect.ExecQuerier) ([]*table, error)
}

func newCatalog(name, schema string) (catalog, error) {
	switch name {
	case dialect.Postgres:
		return &informationSchema{schema: schema, queries: postgresQueries}, nil
	case dialect.MySQL:
		return &informationSchema{schema: schema, queries: mysqlQueries}, nil
	case dialect.SQLite:
		return sqliteCatalog{}, nil
	}
	return nil, dialect.Validate(name)
}

type schemaQueries struct {
	tables, columns, constraints string
}

var postgresQueries = schemaQueries{
	tables: `SELECT t.table_name, COALESCE(obj_description(c.oid, 'pg_class'), '')
FROM information_schema.tables t
JOIN pg_catalog.pg_namespace n ON n.nspname = t.table_schema
JOIN pg_catalog.pg_class c ON c.relnamespace = n.oid AND c.relname = t.table_name
WHERE t.table_schema = $1 AND t.table_type = 'BASE TABLE'
ORDER BY t.table_name`,
	columns: `SELECT c.table_name, c.column_name, c.udt_name,
	COALESCE(c.character_maximum_length, c.numeric_precision), c.numeric_scale, c.is_nullable,
	COALESCE(col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position), '')
FROM information_schema.columns c
WHERE c.table_schema = $1
ORDER BY c.table_name, c.ordinal_position`,
	constraints: `SELECT tc.table_name, tc.constraint_name, tc.constraint_type, kcu.column_name,
	COALESCE(ref.table_name, ''), COALESCE(ref.column_name, '')
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
	ON kcu.constraint_schema = tc.constraint_schema AND kcu.constraint_name = tc.constraint_name AND kcu.table_name = tc.table_name
LEFT JOIN information_schema.referential_constraints rc
	ON rc.constraint_schema = tc.constraint_schema AND rc.constraint_name = tc.constraint_name
LEFT JOIN information_schema.key_column_usage ref
	ON ref.constraint_schema = rc.unique_constraint_schema AND ref.constraint_name = rc.unique_constraint_name
	AND ref.ordinal_position = kcu.position_in_unique_constraint
WHERE tc.table_schema = $1 AND tc.constraint_type IN ('PRIMARY KEY', 'FOREIGN KEY', 'UNIQUE')
ORDER BY tc.table_name, tc.constraint_name, kcu.ordinal_position`,
}

var mysqlQueries = schemaQueries{
	tables: `SELECT TABLE_NAME, TABLE_COMMENT
FROM information_schema.TABLES
WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
ORDER BY TABLE_NAME`,
	columns: `SELECT TABLE_NAME, COLUMN_NAME, DATA_TYPE,
	COALESCE(CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION), NUMERIC_SCALE, IS_NULLABLE, COLUMN_COMMENT
FROM information_schema.COLUMNS
WHERE TABLE_SCHEMA = ?
ORDER BY TABLE_NAME, ORDINAL_POSITION`,
	constraints: `SELECT tc.TABLE_NAME, tc.CONSTRAINT_NAME, tc.CONSTRAINT_TYPE, kcu.COLUMN_NAME,
	COALESCE(kcu.REFERENCED_TABLE_NAME, ''), COALESCE(kcu.REFERENCED_COLUMN_NAME, '')
FROM information_schema.TABLE_CONSTRAINTS tc
JOIN information_schema.KEY_COLUMN_USAGE kcu
	ON kcu.CONSTRAINT_SCHEMA = tc.CONSTRAINT_SCHEMA AND kcu.CONSTRAINT_NAME = tc.CONSTRAINT_NAME AND kcu.TABLE_NAME = tc.TABLE_NAME
WHERE tc.TABLE_SCHEMA = ? AND tc.CONSTRAINT_TYPE IN ('PRIMARY KEY', 'FOREIGN KEY', 'UNIQUE')
ORDER BY tc.TABLE_NAME, tc.CONSTRAINT_NAME, kcu.ORDINAL_POSITION`,
}

// informationSchema reads the catalog of PostgreSQL and MySQL.
type informationSchema struct {
	schema  string
	queries schemaQueries
}

func (s *informationSchema) tables(ctx context.Context, q dialect.ExecQuerier) ([]*table, error) {
	var (
		tables []*table
		byName = make(map[string]*table)
	)
	err := query(ctx, q, s.queries.tables, []any{s.schema}, func(r sql.ColumnScanner) error {
		t := &table{}
		if err := r.Scan(&t.Name, &t.Comment); err != nil {
			return err
		}
		tables = append(tables, t)
		byName[t.Name] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = query(ctx, q, s.queries.columns, []any{s.schema}, func(r sql.ColumnScanner) error {
		var (
			name, nullable string
			length, scale  sql.NullInt64
			c              = &column{}
		)
		if err := r.Scan(&name, &c.Name, &c.Type, &length, &scale, &nullable, &c.Comment); err != nil {
			return err
		}
		t, ok := byName[name]
		if !ok {
			// Columns of views.
			return nil
		}
		c.Type = strings.ToLower(c.Type)
		c.Length, c.Scale = intPtr(length), intPtr(scale)
		c.Nullable = strings.EqualFold(nullable, "YES")
		t.Columns = append(t.Columns, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	var rows []constraintRow
	err = query(ctx, q, s.queries.constraints, []any{s.schema}, func(r sql.ColumnScanner) error {
		var row constraintRow
		if err := r.Scan(&row.Table, &row.Constraint, &row.Type, &row.Column, &row.RefTable, &row.RefColumn); err != nil {
			return err
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	applyConstraints(byName, rows)
	return tables, nil
}

// sqliteCatalog reads the catalog of SQLite through its pragma functions.
type sqliteCatalog struct{}

func (sqliteCatalog) tables(ctx context.Context, q dialect.ExecQuerier) ([]*table, error) {
	var tables []*table
	err := query(ctx, q, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name", []any{}, func(r sql.ColumnScanner) error {
		t := &table{}
		if err := r.Scan(&t.Name); err != nil {
			return err
		}
		tables = append(tables, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*table, len(tables))
	var rows []constraintRow
	for _, t := range tables {
		byName[t.Name] = t
		type pk struct {
			name string
			pos  int
		}
		var pks []pk
		err := query(ctx, q, `SELECT name, type, "notnull", pk FROM pragma_table_info(?) ORDER BY cid`, []any{t.Name}, func(r sql.ColumnScanner) error {
			var (
				c       = &column{}
				notNull bool
				pos     int
			)
			if err := r.Scan(&c.Name, &c.Type, &notNull, &pos); err != nil {
				return err
			}
			c.Type, c.Length, c.Scale = parseType(c.Type)
			c.Nullable = !notNull && pos == 0
			t.Columns = append(t.Columns, c)
			if pos > 0 {
				pks = append(pks, pk{c.Name, pos})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		slices.SortFunc(pks, func(a, b pk) int { return a.pos - b.pos })
		for _, k := range pks {
			rows = append(rows, constraintRow{Table: t.Name, Constraint: "pk", Type: typePrimaryKey, Column: k.name})
		}
		err = query(ctx, q, `SELECT id, "table", "from", "to" FROM pragma_foreign_key_list(?) ORDER BY id, seq`, []any{t.Name}, func(r sql.ColumnScanner) error {
			var (
				id  int
				row = constraintRow{Table: t.Name, Type: typeForeignKey}
			)
			if err := r.Scan(&id, &row.RefTable, &row.Column, &row.RefColumn); err != nil {
				return err
			}
			row.Constraint = "fk_" + strconv.Itoa(id)
			rows = append(rows, row)
			return nil
		})
		if err != nil {
			return nil, err
		}
		err = query(ctx, q, `SELECT il.name, ii.name FROM pragma_index_list(?) il JOIN pragma_index_info(il.name) ii
WHERE il."unique" = 1 AND il.origin = 'u' ORDER BY il.name, ii.seqno`, []any{t.Name}, func(r sql.ColumnScanner) error {
			row := constraintRow{Table: t.Name, Type: typeUnique}
			if err := r.Scan(&row.Constraint, &row.Column); err != nil {
				return err
			}
			rows = append(rows, row)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	applyConstraints(byName, rows)
	return tables, nil
}

// applyConstraints groups constraint rows, ordered by table, constraint
// and position, into the keys of their table.
func applyConstraints(tables map[string]*table, rows []constraintRow) {
	var (
		cur  string
		fk   *foreignKey
		uniq int
	)
	for _, row := range rows {
		t, ok := tables[row.Table]
		if !ok {
			continue
		}
		key := row.Table + "." + row.Constraint
		start := key != cur
		cur = key
		switch row.Type {
		case typePrimaryKey:
			t.PrimaryKey = append(t.PrimaryKey, row.Column)
		case typeForeignKey:
			if start {
				fk = &foreignKey{Name: row.Constraint, RefTable: row.RefTable}
				t.Foreign = append(t.Foreign, fk)
			}
			fk.Columns = append(fk.Columns, row.Column)
			fk.RefColumns = append(fk.RefColumns, row.RefColumn)
		case typeUnique:
			if start {
				t.Unique = append(t.Unique, nil)
				uniq = len(t.Unique) - 1
			}
			t.Unique[uniq] = append(t.Unique[uniq], row.Column)
		}
	}
}

// query runs a catalog query and scans its rows.
func query(ctx context.Context, q dialect.ExecQuerier, stmt string, args []any, scan func(sql.ColumnScanner) error) error {
	rows := &sql.Rows{}
	if err := q.Query(ctx, stmt, args, rows); err != nil {
		return fmt.Errorf("importer: read catalog: %w", err)
	}
	return sql.ScanAll(rows, scan)
}

// parseType splits a declared column type such as "NUMERIC(12, 2)" into
// its lowercase name, length and scale.
func parseType(s string) (string, *int, *int) {
	s = strings.ToLower(strings.TrimSpace(s))
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return s, nil, nil
	}
	name := strings.TrimSpace(s[:open])
	args := strings.Split(s[open+1:len(s)-1], ",")
	var length, scale *int
	if n, err := strconv.Atoi(strings.TrimSpace(args[0])); err == nil {
		length = &n
	}
	if len(args) > 1 {
		if n, err := strconv.Atoi(strings.TrimSpace(args[1])); err == nil {
			scale = &n
		}
	}
	return name, length, scale
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
