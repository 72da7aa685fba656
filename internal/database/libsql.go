// Package database opens libsql connections for run persistence. Both
// remote Turso databases and local file: URLs are supported; local files
// need no auth token.
package database

import (
	"database/sql"
	"time"

	_ "github.com/tursodatabase/go-libsql"
)

// New opens a libsql connection and verifies it with a ping.
func New(databaseURL, authToken string) (*sql.DB, error) {
	connStr := databaseURL
	if authToken != "" {
		connStr += "?authToken=" + authToken
	}
	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, err
	}

	// Turso's Hrana protocol aggressively closes idle streams; keeping idle
	// connections around just trades them for "stream not found" errors on
	// the next query. Force fresh connections instead.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(0)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
