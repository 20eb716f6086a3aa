// Package sqlite implements the client and task repositories of
// internal/store on SQLite through the pure Go modernc.org/sqlite driver.
// It backs the test profile and single-file deployments.
package sqlite
