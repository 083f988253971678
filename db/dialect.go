// Package db persists the merged county table to a database so the
// dashboard can be pointed at ClickHouse or Postgres instead of the CSV.
package db

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/jackc/pgx/stdlib"

	"github.com/Jairaye/housing-preference-locator/frame"
)

// All code interacting with a database is here.  SQL text lives in
// skeletons with ?Placeholders filled per dialect.

var (
	//go:embed skeletons/clickhouse/create.txt
	chCreate string
	//go:embed skeletons/postgres/create.txt
	pgCreate string

	//go:embed skeletons/clickhouse/fields.txt
	chFields string
	//go:embed skeletons/postgres/fields.txt
	pgFields string

	//go:embed skeletons/clickhouse/dropif.txt
	chDropIf string
	//go:embed skeletons/postgres/dropif.txt
	pgDropIf string

	//go:embed skeletons/clickhouse/types.txt
	chTypes string
	//go:embed skeletons/postgres/types.txt
	pgTypes string
)

const (
	ch = "clickhouse"
	pg = "postgres"
)

type Dialect struct {
	db      *sql.DB
	dialect string

	create string
	fields string
	dropIf string

	dtTypes []string
	dbTypes []string
}

func NewDialect(dialect string, db *sql.DB) (*Dialect, error) {
	dialect = strings.ToLower(dialect)

	d := &Dialect{db: db, dialect: dialect}

	var types string
	switch dialect {
	case ch:
		d.create, d.fields, d.dropIf, types = chCreate, chFields, chDropIf, chTypes
	case pg:
		d.create, d.fields, d.dropIf, types = pgCreate, pgFields, pgDropIf, pgTypes
	default:
		return nil, fmt.Errorf("no skeletons for database %s", dialect)
	}

	for _, line := range strings.Split(types, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		kv := strings.SplitN(line, ",", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("bad type map line %q", line)
		}

		d.dtTypes = append(d.dtTypes, kv[0])
		d.dbTypes = append(d.dbTypes, kv[1])
	}

	return d, nil
}

// Open connects to the DSN, picking the dialect from its scheme.
func Open(dsn string) (*Dialect, error) {
	var driver, dialect string

	switch {
	case strings.HasPrefix(dsn, "clickhouse://"):
		driver, dialect = "clickhouse", ch
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		driver, dialect = "pgx", pg
	default:
		return nil, fmt.Errorf("cannot infer dialect from DSN %q", dsn)
	}

	sqlDB, e := sql.Open(driver, dsn)
	if e != nil {
		return nil, e
	}

	return NewDialect(dialect, sqlDB)
}

func (d *Dialect) DialectName() string { return d.dialect }

func (d *Dialect) Close() error {
	if d.db == nil {
		return nil
	}

	return d.db.Close()
}

func (d *Dialect) dbtype(dt frame.DataTypes) (string, error) {
	for ind, nm := range d.dtTypes {
		if nm == dt.String() {
			return d.dbTypes[ind], nil
		}
	}

	return "", fmt.Errorf("no %s type for %v", d.dialect, dt)
}

// CreateSQL renders the CREATE TABLE statement for a table's schema.
// orderBy defaults to the first column (ClickHouse only).
func (d *Dialect) CreateSQL(tableName, orderBy string, t *frame.Table) (string, error) {
	names := t.ColumnNames()
	if orderBy == "" {
		orderBy = names[0]
	}

	var flds []string
	for _, name := range names {
		col, _ := t.Column(name)

		dbType, e := d.dbtype(col.DataType())
		if e != nil {
			return "", e
		}

		// ClickHouse rejects nullable sorting-key columns
		if d.dialect == ch && name == orderBy {
			dbType = strings.TrimSuffix(strings.TrimPrefix(dbType, "Nullable("), ")")
		}

		field := strings.ReplaceAll(d.fields, "?Field", name)
		field = strings.ReplaceAll(field, "?Type", dbType)
		flds = append(flds, "    "+field)
	}

	create := strings.ReplaceAll(d.create, "?TableName", tableName)
	create = strings.Replace(create, "?OrderBy", orderBy, 1)
	create = strings.Replace(create, "?fields", strings.Join(flds, ",\n"), 1)

	if strings.Contains(create, "?") {
		return "", fmt.Errorf("create still has placeholders: %s", create)
	}

	return create, nil
}

// InsertSQL renders a single-row INSERT with dialect placeholders.
func (d *Dialect) InsertSQL(tableName string, t *frame.Table) string {
	names := t.ColumnNames()

	ph := make([]string, len(names))
	for ind := range ph {
		ph[ind] = "?"
		if d.dialect == pg {
			ph[ind] = fmt.Sprintf("$%d", ind+1)
		}
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tableName, strings.Join(names, ", "), strings.Join(ph, ", "))
}

func (d *Dialect) DropIfSQL(tableName string) string {
	return strings.TrimSpace(strings.ReplaceAll(d.dropIf, "?TableName", tableName))
}

// Save creates the table (dropping an existing one when overwrite) and
// inserts every row.  Missing cells insert as NULL.
func (d *Dialect) Save(t *frame.Table, tableName string, overwrite bool) error {
	if overwrite {
		if _, e := d.db.Exec(d.DropIfSQL(tableName)); e != nil {
			return e
		}
	}

	create, e := d.CreateSQL(tableName, "", t)
	if e != nil {
		return e
	}

	if _, e = d.db.Exec(create); e != nil {
		return e
	}

	tx, e := d.db.Begin()
	if e != nil {
		return e
	}

	stmt, e := tx.Prepare(d.InsertSQL(tableName, t))
	if e != nil {
		_ = tx.Rollback()
		return e
	}
	defer func() { _ = stmt.Close() }()

	names := t.ColumnNames()
	vals := make([]any, len(names))
	for i := 0; i < t.RowCount(); i++ {
		for j, name := range names {
			col, _ := t.Column(name)
			vals[j] = col.Element(i) // nil inserts NULL
		}

		if _, e = stmt.Exec(vals...); e != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert row %d: %w", i, e)
		}
	}

	return tx.Commit()
}
