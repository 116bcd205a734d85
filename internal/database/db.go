// Package database opens the MySQL connection the repositories run on.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Params carries everything Open needs to build the DSN and size the
// connection pool. Pass is optional; MaxConns and ConnMaxLife fall back
// to modest defaults when zero so tests can construct Params sparsely.
type Params struct {
	User        string
	Pass        string
	Host        string
	Port        string
	Name        string
	MaxConns    int
	ConnMaxLife time.Duration
}

// dsn builds the driver connection string. parseTime and a UTC location
// are forced so DATETIME columns scan into time.Time values that agree
// with the UTC dates the booking logic computes in Go.
func (p Params) dsn() string {
	auth := p.User
	if p.Pass != "" {
		auth = p.User + ":" + p.Pass
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, p.Host, p.Port, p.Name)
}

// pool resolves the configured pool size and lifetime, applying defaults
// for zero values.
func (p Params) pool() (int, time.Duration) {
	maxConns := p.MaxConns
	if maxConns <= 0 {
		maxConns = 10
	}
	life := p.ConnMaxLife
	if life <= 0 {
		life = 30 * time.Minute
	}
	return maxConns, life
}

// Open connects to MySQL with the given parameters and pings before
// returning.
func Open(p Params) (*sql.DB, error) {
	db, err := sql.Open("mysql", p.dsn())
	if err != nil {
		return nil, err
	}

	maxConns, life := p.pool()
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(life)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
