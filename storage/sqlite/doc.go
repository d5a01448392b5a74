// Package sqlite reads the read-only SQLite sources that feed the catalog:
// the answer table, the agency table and the intro/closing table.
//
// Each read opens its own connection, runs a single query and closes the
// connection again. The workload is read-once at startup, so no handle is
// kept between calls.
//
// The Write* helpers create the same tables and are used to build fixtures.
package sqlite
