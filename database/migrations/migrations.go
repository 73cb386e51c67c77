// Package migrations registers every schema migration of the service. It is
// imported for its side effects by the CLI and by tests that need a schema.
package migrations
