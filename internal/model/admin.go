package model

import "time"

// AdminUser represents a row of the `admin_users` table. Only the bcrypt
// hash of the password is persisted; the plain credential never touches
// the database.
type AdminUser struct {
	ID           uint64    // admin_users.id
	Username     string    // admin_users.username
	PasswordHash string    // admin_users.password_hash
	CreatedAt    time.Time // admin_users.created_at
}
