// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx driver.
//
// Statements come from the named-query registry in the queries
// subpackage; schema changes live in migrations and are applied with goose.
// Stores accept a store.DBTX so they can be rebound to a transaction with
// WithTx.
package postgres
