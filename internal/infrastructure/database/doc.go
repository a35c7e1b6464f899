// Package database manages the SQLite connection and schema migrations
// for Lights Core.
//
// The connection is opened with WAL mode and a busy timeout, foreign
// keys enabled, and a single-connection pool to match SQLite's writer
// model. Migrations are plain SQL files embedded into the binary and
// applied in version order, one transaction per migration.
package database
