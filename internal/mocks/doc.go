// Package mocks provides shared test doubles for the store, auth and mailer
// interfaces.
//
// Two flavours are available:
//
//   - In-memory fakes (MockUserStore, MockTaskStore) that behave like the
//     Postgres stores, including owner scoping, filtering, sorting and paging.
//     Function fields override individual methods for error injection.
//   - testify mocks (TestifyMockUserStore) for call-level expectations.
//
// NoopTransactor runs transactional code without a database; the fake stores
// return themselves from WithTx.
package mocks
