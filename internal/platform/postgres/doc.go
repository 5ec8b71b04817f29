// Package postgres provides the PostgreSQL implementations of the store
// interfaces. Queries run through store.DBTX so every store can be bound to a
// transaction with WithTx, and driver errors are translated into store
// sentinels by MapError before they leave the package.
package postgres
