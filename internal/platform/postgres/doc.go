// Package postgres implements the client and task repositories of
// internal/store on PostgreSQL through the pgx database/sql driver.
//
// The schema lives in the embedded migrations directory and is applied with
// goose; see Migrations.
package postgres
