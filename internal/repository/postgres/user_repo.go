package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, auth0_id, email, name, picture_url, created_at, updated_at`

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID retrieves a user by their UUID
func (r *UserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		pgtype.UUID{Bytes: id, Valid: true})
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetByAuth0ID retrieves a user by their Auth0 ID
func (r *UserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+userColumns+` FROM users WHERE auth0_id = $1`, auth0ID)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// CreateOrGetByAuth0ID creates a new user or returns existing one (upsert on login).
// Profile fields are refreshed from the identity provider on every login.
func (r *UserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO users (auth0_id, email, name, picture_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (auth0_id) DO UPDATE
		SET email = EXCLUDED.email,
		    name = COALESCE(EXCLUDED.name, users.name),
		    picture_url = COALESCE(EXCLUDED.picture_url, users.picture_url),
		    updated_at = NOW()
		RETURNING `+userColumns,
		auth0ID, email, stringPtrToPgText(name), stringPtrToPgText(pictureURL))
	return scanUser(row)
}

// UpdateName sets a user's display name
func (r *UserRepository) UpdateName(auth0ID string, name string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE users SET name = $2, updated_at = NOW()
		WHERE auth0_id = $1
		RETURNING `+userColumns,
		auth0ID, name)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		id         pgtype.UUID
		name       pgtype.Text
		pictureURL pgtype.Text
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
		user       domain.User
	)
	if err := row.Scan(&id, &user.Auth0ID, &user.Email, &name, &pictureURL, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	user.ID = uuid.UUID(id.Bytes)
	user.Name = pgTextToStringPtr(name)
	user.PictureURL = pgTextToStringPtr(pictureURL)
	user.CreatedAt = createdAt.Time
	user.UpdatedAt = updatedAt.Time
	return &user, nil
}
