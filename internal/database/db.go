// Package database opens the MySQL pool behind the Guest List
// projection store.  The seating engine keeps all plan state in
// memory; MySQL holds only guest records and the denormalized
// assignment projection the reconciler writes back.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to the guest-list database and verifies the
// connection before handing the pool out.  Timestamps are stored in
// UTC and scanned into time.Time (parseTime).
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	cred := user
	if pass != "" {
		cred = fmt.Sprintf("%s:%s", user, pass)
	}
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		cred, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// The guestlist store is the pool's only consumer: guest lookups
	// on assignment, list reads for auto-assign and reconcile sweeps,
	// and projection writes from the single reconciler worker.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
