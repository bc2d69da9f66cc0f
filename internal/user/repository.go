package user

import (
	"context"
	"database/sql"
	"errors"

	"suitup-be/internal/db"
	"suitup-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const userColumns = `id, name, email, password, role, created_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	var password sql.NullString
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &password, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	if password.Valid {
		u.Password = &password.String
	}
	return &u, nil
}

func (r *repository) Create(ctx context.Context, u *User) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	created, err := scanUser(r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, name, email, password, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		u.ID, u.Name, u.Email, u.Password, u.Role,
	))
	if err != nil {
		if db.IsUniqueViolation(err) {
			log.Warn("email already registered", zap.String("email", u.Email))
			return nil, ErrEmailExists
		}
		log.Error("failed to insert user", zap.String("email", u.Email), zap.Error(err))
		return nil, err
	}

	return created, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}
