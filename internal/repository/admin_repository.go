package repository

import (
	"context"
	"database/sql"
	"log"

	"github.com/ruanfs/agenda-posto/internal/model"
	"github.com/ruanfs/agenda-posto/internal/utils"
)

// AdminRepo provides access to the admin_users table.
type AdminRepo struct {
	db *sql.DB
}

// NewAdminRepo returns a new AdminRepo bound to the given database.
func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{db: db} }

// GetByUsername loads an admin by username. It returns sql.ErrNoRows when
// no such admin exists; callers must not leak which of username or
// password was wrong.
func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (*model.AdminUser, error) {
	const q = `SELECT id, username, password_hash, created_at
	           FROM admin_users WHERE username = ?`
	var a model.AdminUser
	err := r.db.QueryRowContext(ctx, q, username).Scan(
		&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Bootstrap seeds a single admin account when the table is empty and a
// setup password was provided. It is an explicit migration convenience,
// not a default credential: with no ADMIN_SETUP_PASSWORD in the
// environment no account is created and login stays impossible until an
// operator seeds one. Hashing always goes through bcrypt.
func (r *AdminRepo) Bootstrap(ctx context.Context, username, plainPassword string, bcryptCost int) error {
	if plainPassword == "" {
		return nil
	}
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := utils.HashPassword(plainPassword, bcryptCost)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO admin_users (username, password_hash) VALUES (?, ?)`,
		username, hash)
	if err != nil {
		return err
	}
	log.Printf("seeded initial admin account %q", username)
	return nil
}
