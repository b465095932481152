// Package schema: safe database initialization — create only missing tables,
// never drop or overwrite.
package schema

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

const (
	tableProfiles           = "profiles"
	tableComplaints         = "complaints"
	tableComplaintRedirects = "complaint_redirects"
	tableNotifications      = "notifications"
)

// InitializeDatabase ensures core tables exist. Checks INFORMATION_SCHEMA.TABLES
// and creates only missing tables in dependency order: profiles → complaints →
// complaint_redirects → notifications. Does not drop or recreate tables; does
// not remove data.
func InitializeDatabase(db *sql.DB) error {
	tables := []struct {
		name   string
		create func(*sql.DB) error
	}{
		{tableProfiles, createProfilesTable},
		{tableComplaints, createComplaintsTable},
		{tableComplaintRedirects, createComplaintRedirectsTable},
		{tableNotifications, createNotificationsTable},
	}

	for _, t := range tables {
		exists, err := tableExists(db, t.name)
		if err != nil {
			return fmt.Errorf("check table %s: %w", t.name, err)
		}
		if exists {
			log.Info().Str("table", t.name).Msg("schema: table exists")
			continue
		}
		if err := t.create(db); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
		log.Info().Str("table", t.name).Msg("schema: created table")
	}
	return nil
}

func tableExists(db *sql.DB, table string) (bool, error) {
	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?`,
		table,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func createProfilesTable(db *sql.DB) error {
	q := `
CREATE TABLE IF NOT EXISTS profiles (
    id CHAR(36) PRIMARY KEY,
    email VARCHAR(255) NOT NULL UNIQUE,
    full_name VARCHAR(255) NOT NULL DEFAULT '',
    department VARCHAR(50) NOT NULL,
    role VARCHAR(50) NOT NULL DEFAULT 'official',
    location VARCHAR(255) NOT NULL DEFAULT '',
    password_hash VARCHAR(255) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    INDEX idx_profiles_email (email),
    INDEX idx_profiles_department (department)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`
	_, err := db.Exec(q)
	return err
}

func createComplaintsTable(db *sql.DB) error {
	q := `
CREATE TABLE IF NOT EXISTS complaints (
    id CHAR(36) PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL,
    category VARCHAR(50) NULL,
    status VARCHAR(50) NOT NULL DEFAULT 'new',
    progress_stage VARCHAR(50) NULL,
    citizen_name VARCHAR(255) NOT NULL DEFAULT '',
    citizen_phone VARCHAR(20) NOT NULL DEFAULT '',
    citizen_email VARCHAR(255) NULL,
    location VARCHAR(255) NOT NULL DEFAULT '',
    latitude DECIMAL(10,8) NULL,
    longitude DECIMAL(11,8) NULL,
    complaint_images JSON NULL,
    solution_image TEXT NULL,
    assigned_department VARCHAR(50) NULL,
    assigned_to CHAR(36) NULL,
    resolved_at TIMESTAMP NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NULL,
    INDEX idx_complaints_status (status),
    INDEX idx_complaints_department (assigned_department),
    INDEX idx_complaints_citizen_email (citizen_email),
    INDEX idx_complaints_created_at (created_at),
    INDEX idx_complaints_status_created (status, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`
	_, err := db.Exec(q)
	return err
}

func createComplaintRedirectsTable(db *sql.DB) error {
	q := `
CREATE TABLE IF NOT EXISTS complaint_redirects (
    id CHAR(36) PRIMARY KEY,
    complaint_id CHAR(36) NOT NULL,
    from_department VARCHAR(50) NOT NULL,
    to_department VARCHAR(50) NOT NULL,
    redirected_by CHAR(36) NOT NULL,
    reason TEXT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (complaint_id) REFERENCES complaints(id) ON DELETE CASCADE,
    INDEX idx_redirects_complaint (complaint_id),
    INDEX idx_redirects_created_at (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`
	_, err := db.Exec(q)
	return err
}

func createNotificationsTable(db *sql.DB) error {
	q := `
CREATE TABLE IF NOT EXISTS notifications (
    id BIGINT PRIMARY KEY AUTO_INCREMENT,
    user_email VARCHAR(255) NOT NULL,
    title VARCHAR(255) NOT NULL,
    message TEXT NOT NULL,
    is_read BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    INDEX idx_notifications_email (user_email),
    INDEX idx_notifications_created_at (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`
	_, err := db.Exec(q)
	return err
}
