package db

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS clubs (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		region TEXT NOT NULL DEFAULT '',
		owner_id UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		role TEXT NOT NULL,
		club_id UUID REFERENCES clubs(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS members (
		id UUID PRIMARY KEY,
		user_id UUID REFERENCES users(id),
		club_id UUID NOT NULL REFERENCES clubs(id),
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		date_of_birth DATE NOT NULL,
		gender TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		guardian_id UUID REFERENCES users(id),
		active_pass_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS member_passes (
		id UUID PRIMARY KEY,
		member_id UUID NOT NULL REFERENCES members(id),
		club_id UUID NOT NULL REFERENCES clubs(id),
		template_name TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		payment_status TEXT NOT NULL DEFAULT 'pending',
		total_sessions INT,
		attendable_sessions INT,
		attendance_count INT,
		remaining_sessions INT,
		start_date DATE,
		end_date DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_records (
		id UUID PRIMARY KEY,
		member_id UUID NOT NULL REFERENCES members(id),
		club_id UUID NOT NULL REFERENCES clubs(id),
		pass_id UUID NOT NULL REFERENCES member_passes(id),
		day DATE NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (member_id, day)
	)`,
	`CREATE TABLE IF NOT EXISTS registration_requests (
		id UUID PRIMARY KEY,
		club_id UUID NOT NULL REFERENCES clubs(id),
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		date_of_birth DATE NOT NULL,
		gender TEXT NOT NULL DEFAULT '',
		guardian_id UUID REFERENCES users(id),
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS pass_requests (
		id UUID PRIMARY KEY,
		member_id UUID NOT NULL REFERENCES members(id),
		club_id UUID NOT NULL REFERENCES clubs(id),
		template_name TEXT NOT NULL DEFAULT '',
		total_sessions INT,
		attendable_sessions INT,
		start_date DATE,
		end_date DATE,
		payment_status TEXT NOT NULL DEFAULT 'pending',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_members_club ON members(club_id)`,
	`CREATE INDEX IF NOT EXISTS idx_member_passes_member ON member_passes(member_id)`,
	`CREATE INDEX IF NOT EXISTS idx_member_passes_status_end ON member_passes(status, end_date)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_member_day ON attendance_records(member_id, day)`,
}

// EnsureSchema creates missing tables and indexes. Every statement is
// idempotent, so repeated boots are harmless.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	log.Printf("ensuring database schema")
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
