// Package store defines the persistence contracts for users, their session
// tokens and their tasks, together with the errors and transaction helpers
// every implementation shares. Services depend on these interfaces only;
// the Postgres implementations live in internal/platform/postgres.
package store
