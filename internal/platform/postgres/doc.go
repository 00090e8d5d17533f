// Package postgres provides PostgreSQL implementations of the store
// interfaces, running database/sql over the pgx stdlib driver. Constraint
// violations are mapped onto the store package's sentinel errors; uniqueness
// of usernames, emails, and slugs is enforced by the database so it holds
// under concurrent writers.
package postgres
