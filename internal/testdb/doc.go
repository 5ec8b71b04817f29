// Package testdb provides helpers for Postgres integration tests: locating the
// test database, applying the embedded migrations once, and running each test
// inside a transaction that is rolled back afterwards so tests never see each
// other's rows.
//
// Integration tests are opt-in. They run only when DATABASE_URL (or
// TASKMAN_TEST_DB_URL) points at a disposable database and the integration
// build tag is set:
//
//	DATABASE_URL=postgres://... go test -tags integration ./...
package testdb
