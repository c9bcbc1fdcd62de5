//go:build integration

// Package testdb provides utilities for database integration tests.
//
// It implements a transaction-based isolation pattern: each test runs in its
// own transaction, which is rolled back when the test completes, so tests
// can run in parallel against one schema without cleanup.
//
// Basic usage:
//
//	func TestMyFeature(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        tasks := postgres.NewPostgresTaskStore(tx, nil)
//	        // ...
//	    })
//	}
//
// Tests are skipped unless TASKFLOW_TEST_DATABASE_URL (or DATABASE_URL) is set.
package testdb
