// Package sql generates the DDL scripts of the persistent classes of a model.
//
// The generator turns every class in scope into an atlas schema.Table and
// lets the atlas planner of the configured dialect order and render the
// CREATE statements:
//
//	┌──────────────┐    ┌──────────────┐    ┌──────────────────┐
//	│ model.Class  │ ─▶ │ schema.Table │ ─▶ │ migrate.Plan     │ ─▶ tables.sql
//	└──────────────┘    └──────────────┘    └──────────────────┘
//
// # Files
//
//   - tables.sql: tables, primary keys, unique constraints, foreign keys,
//     indexes and, with Options.Comments, table and column comments.
//   - values.sql: INSERT statements of the values of reference classes,
//     rendered when Options.Values is set.
//
// # Dialects
//
// dialect.Postgres, dialect.MySQL and dialect.SQLite are supported. Column
// types come from the sql implementation of the domains; the length and
// scale of the domain are appended to the type.
//
// # Schema check
//
// With the sql/check feature the generated schema and values are applied
// to an in-memory SQLite database before any file is written, so a script
// SQLite rejects fails the generation.
package sql
