// Package locator assembles a per-county table of housing values,
// election results, gun law grades, population and exotic-pet and
// marijuana laws, and filters it by a buyer's preferences.
//
// The packages divide the work:
//
//   - frame: typed columns with per-row missing masks, CSV read/write
//     with type sniffing, sorting and left joins.
//   - merge: the pipeline that loads the source files, joins them on
//     county or state keys and derives the categorical columns.
//   - store: a cached loader for the merged file that invalidates on
//     change.
//   - engine: filters, summary statistics and display/plot views over
//     the merged table.
//   - db: pushes the merged table to ClickHouse or Postgres.
//
// cmd/locator wires these into a CLI.
package locator
