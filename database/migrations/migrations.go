// Package migrations registers the schema migrations. Import it for side
// effects before running a migration.Runner.
package migrations
