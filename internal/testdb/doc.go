// Package testdb provides helpers for integration tests that need a real
// PostgreSQL database.
//
// Tests opt in with the "integration" build tag and a database URL in
// STUDYTRACK_TEST_DATABASE_URL (or DATABASE_URL). The schema is migrated
// once per test binary, and each test runs inside a transaction that is
// rolled back when it finishes:
//
//	func TestSomething(t *testing.T) {
//		db := testdb.GetTestDBWithT(t)
//		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//			// use tx
//		})
//	}
package testdb
