// Package postgres provides pgx-backed persistence for accounts, classes and
// enrollments.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/fitclass/internal/domain"
	"example.com/fitclass/internal/observability"
)

const uniqueViolation = "23505"

// Repository implements domain.Repository on a pgx pool.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateAccount persists a new account. A concurrent signup that slips past
// the caller's pre-check surfaces as domain.ErrDuplicateEmail via the unique
// index.
func (r *Repository) CreateAccount(ctx context.Context, account domain.Account) error {
	const stmt = `INSERT INTO accounts (account_id, first_name, last_name, email, password_hash, gender, payment_method, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err := r.pool.Exec(ctx, stmt,
		account.ID,
		account.FirstName,
		account.LastName,
		account.Email,
		account.PasswordHash,
		account.Gender,
		account.PaymentMethod,
		account.CreatedAt,
	)
	if isUniqueViolation(err, "accounts_email_key") {
		return domain.ErrDuplicateEmail
	}
	return err
}

// AccountByEmail fetches an account by email, or nil when none exists.
func (r *Repository) AccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const query = `SELECT account_id, first_name, last_name, email, password_hash, gender, payment_method, created_at
        FROM accounts WHERE email=$1`
	return r.scanAccount(r.pool.QueryRow(ctx, query, email))
}

// AccountByID fetches an account by ID, or nil when none exists.
func (r *Repository) AccountByID(ctx context.Context, id string) (*domain.Account, error) {
	const query = `SELECT account_id, first_name, last_name, email, password_hash, gender, payment_method, created_at
        FROM accounts WHERE account_id=$1`
	return r.scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(
		&account.ID,
		&account.FirstName,
		&account.LastName,
		&account.Email,
		&account.PasswordHash,
		&account.Gender,
		&account.PaymentMethod,
		&account.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdatePassword overwrites the stored credential hash.
func (r *Repository) UpdatePassword(ctx context.Context, accountID, passwordHash string) error {
	const stmt = `UPDATE accounts SET password_hash=$2 WHERE account_id=$1`
	tag, err := r.pool.Exec(ctx, stmt, accountID, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// CreateClass persists a new class offering.
func (r *Repository) CreateClass(ctx context.Context, class domain.Class) error {
	const stmt = `INSERT INTO classes (class_id, code, category, name, instructor, class_time, price, slots_available, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err := r.pool.Exec(ctx, stmt,
		class.ID,
		class.Code,
		class.Category,
		class.Name,
		class.Instructor,
		class.Time,
		class.Price,
		class.SlotsAvailable,
		class.CreatedAt,
	)
	if isUniqueViolation(err, "classes_code_key") {
		return domain.ErrDuplicateClassCode
	}
	return err
}

// ClassByCode fetches a class by its code, or nil when none exists.
func (r *Repository) ClassByCode(ctx context.Context, code string) (*domain.Class, error) {
	const query = `SELECT class_id, code, category, name, instructor, class_time, price, slots_available, created_at
        FROM classes WHERE code=$1`

	var class domain.Class
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&class.ID,
		&class.Code,
		&class.Category,
		&class.Name,
		&class.Instructor,
		&class.Time,
		&class.Price,
		&class.SlotsAvailable,
		&class.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &class, nil
}

// ClassesByCategory returns all classes in a category in storage order.
func (r *Repository) ClassesByCategory(ctx context.Context, category string) ([]domain.Class, error) {
	const query = `SELECT class_id, code, category, name, instructor, class_time, price, slots_available, created_at
        FROM classes WHERE category=$1 ORDER BY created_at, class_id`

	rows, err := r.pool.Query(ctx, query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanClasses(rows)
}

// Enroll records the enrollment and decrements the slot counter in a single
// transaction. The conditional UPDATE is the capacity guard and also protects
// the counter against lost updates under concurrent enrollments.
func (r *Repository) Enroll(ctx context.Context, accountID, classID string, enrolledAt time.Time) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE account_id=$1 AND class_id=$2)`,
		accountID, classID,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		err = domain.ErrAlreadyEnrolled
		return err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE classes SET slots_available = slots_available - 1
         WHERE class_id=$1 AND slots_available > 0`,
		classID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = domain.ErrClassFull
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO enrollments (account_id, class_id, enrolled_at) VALUES ($1,$2,$3)`,
		accountID, classID, enrolledAt,
	)
	if isUniqueViolation(err, "enrollments_pkey") {
		// Lost the race against a concurrent enrollment for the same pair.
		err = domain.ErrAlreadyEnrolled
		return err
	}
	if err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordEnrollment(enrolledAt)
	return nil
}

// EnrolledClasses returns the classes the account occupies, oldest enrollment
// first.
func (r *Repository) EnrolledClasses(ctx context.Context, accountID string) ([]domain.Class, error) {
	const query = `SELECT c.class_id, c.code, c.category, c.name, c.instructor, c.class_time, c.price, c.slots_available, c.created_at
        FROM enrollments e
        JOIN classes c ON c.class_id = e.class_id
        WHERE e.account_id=$1
        ORDER BY e.enrolled_at, c.class_id`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanClasses(rows)
}

func scanClasses(rows pgx.Rows) ([]domain.Class, error) {
	var classes []domain.Class
	for rows.Next() {
		var class domain.Class
		if err := rows.Scan(
			&class.ID,
			&class.Code,
			&class.Category,
			&class.Name,
			&class.Instructor,
			&class.Time,
			&class.Price,
			&class.SlotsAvailable,
			&class.CreatedAt,
		); err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return classes, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
}
