package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema mirrors db/postgres/migrations/0001_init.up.sql. Dev deployments
// apply it at startup; real migrations run the SQL files directly.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    account_id     TEXT PRIMARY KEY,
    first_name     TEXT NOT NULL,
    last_name      TEXT NOT NULL,
    email          TEXT NOT NULL,
    password_hash  TEXT NOT NULL,
    gender         TEXT NOT NULL,
    payment_method TEXT NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL,
    CONSTRAINT accounts_email_key UNIQUE (email)
);

CREATE TABLE IF NOT EXISTS classes (
    class_id        TEXT PRIMARY KEY,
    code            TEXT NOT NULL,
    category        TEXT NOT NULL,
    name            TEXT NOT NULL,
    instructor      TEXT NOT NULL,
    class_time      TEXT NOT NULL,
    price           INTEGER NOT NULL CHECK (price >= 0),
    slots_available INTEGER NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL,
    CONSTRAINT classes_code_key UNIQUE (code)
);

CREATE TABLE IF NOT EXISTS enrollments (
    account_id  TEXT NOT NULL REFERENCES accounts (account_id),
    class_id    TEXT NOT NULL REFERENCES classes (class_id),
    enrolled_at TIMESTAMPTZ NOT NULL,
    CONSTRAINT enrollments_pkey PRIMARY KEY (account_id, class_id)
);

CREATE INDEX IF NOT EXISTS classes_category_idx ON classes (category);
`

// EnsureSchema creates the tables when they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
