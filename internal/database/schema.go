package database

import (
	"context"
	"database/sql"
)

// schema lists the DDL statements executed at startup. Statements are
// idempotent so the server can be restarted against an existing database.
//
// The UNIQUE key on (slot_date, slot_time) is deliberate: slot generation
// and the booking flow both rely on there being at most one slot per pair,
// and the constraint closes the duplicate-insert window that a plain
// existence check would leave open.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS slots (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		slot_date  DATE NOT NULL,
		slot_time  CHAR(5) NOT NULL,
		available  TINYINT(1) NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_slots_date_time (slot_date, slot_time)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name       VARCHAR(120) NOT NULL,
		cpf        CHAR(11) NOT NULL,
		email      VARCHAR(160) NOT NULL DEFAULT '',
		phone      VARCHAR(11) NOT NULL DEFAULT '',
		slot_date  DATE NOT NULL,
		slot_time  CHAR(5) NOT NULL,
		status     ENUM('pendente','atendido') NOT NULL DEFAULT 'pendente',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY ix_bookings_cpf (cpf),
		KEY ix_bookings_date (slot_date)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS admin_users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		username      VARCHAR(64) NOT NULL,
		password_hash VARCHAR(100) NOT NULL,
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_admin_users_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the application tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
