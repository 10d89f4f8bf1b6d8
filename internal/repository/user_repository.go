package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/tickzi/tickzi/internal/model"
)

// UserRepo manages persistence for users.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo constructs a UserRepo with the given DB handle.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user and populates the generated ID and
// creation timestamp on the given struct. Email is normalized to
// lower case before insertion. The unique index on users.email maps
// to ErrEmailTaken.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	const q = `INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)`
	res, err := exec(ctx, r.db).ExecContext(ctx, q, u.Name, u.Email, u.PasswordHash)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return ErrEmailTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	const sel = `SELECT created_at FROM users WHERE id = ?`
	return exec(ctx, r.db).QueryRowContext(ctx, sel, u.ID).Scan(&u.CreatedAt)
}

// GetByEmail fetches a user by normalized email. Returns
// ErrUserNotFound when no row matches.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	const q = `SELECT id, name, email, password_hash, created_at FROM users WHERE email = ? LIMIT 1`
	var u model.User
	err := exec(ctx, r.db).QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT id, name, email, password_hash, created_at FROM users WHERE id = ? LIMIT 1`
	var u model.User
	err := exec(ctx, r.db).QueryRowContext(ctx, q, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
