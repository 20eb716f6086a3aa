// Package testdb opens migrated databases for tests.
//
// OpenSQLite returns a private in-memory SQLite database and needs no
// external service. OpenPostgres connects to the server named by
// TASKHUB_TEST_DATABASE_URL (or DATABASE_URL) and skips the test when
// neither is set. Combine it with WithTx so each test runs in a
// transaction that is rolled back afterwards:
//
//	func TestClientStore(t *testing.T) {
//	    db := testdb.OpenPostgres(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        clients := postgres.NewPostgresClientStore(tx, bcrypt.MinCost, nil)
//	        // ...
//	    })
//	}
package testdb
