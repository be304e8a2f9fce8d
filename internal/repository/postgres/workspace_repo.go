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

const workspaceColumns = `w.id, w.user_id, w.name, w.created_at, w.updated_at`

// WorkspaceRepository implements domain.WorkspaceRepository using PostgreSQL
type WorkspaceRepository struct {
	pool *pgxpool.Pool
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(pool *pgxpool.Pool) *WorkspaceRepository {
	return &WorkspaceRepository{pool: pool}
}

// GetByID retrieves a workspace by its ID
func (r *WorkspaceRepository) GetByID(id int32) (*domain.Workspace, error) {
	return r.getOne(`SELECT `+workspaceColumns+` FROM workspaces w WHERE w.id = $1`, id)
}

// GetByUserID retrieves a workspace by user ID
func (r *WorkspaceRepository) GetByUserID(userID uuid.UUID) (*domain.Workspace, error) {
	return r.getOne(`SELECT `+workspaceColumns+` FROM workspaces w WHERE w.user_id = $1 ORDER BY w.id LIMIT 1`,
		pgtype.UUID{Bytes: userID, Valid: true})
}

// GetByUserAuth0ID retrieves a workspace by user's Auth0 ID
func (r *WorkspaceRepository) GetByUserAuth0ID(auth0ID string) (*domain.Workspace, error) {
	return r.getOne(`
		SELECT `+workspaceColumns+`
		FROM workspaces w
		JOIN users u ON u.id = w.user_id
		WHERE u.auth0_id = $1
		ORDER BY w.id
		LIMIT 1`, auth0ID)
}

// Create creates a new workspace
func (r *WorkspaceRepository) Create(workspace *domain.Workspace) (*domain.Workspace, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO workspaces AS w (user_id, name)
		VALUES ($1, $2)
		RETURNING `+workspaceColumns,
		pgtype.UUID{Bytes: workspace.UserID, Valid: true}, workspace.Name)
	return scanWorkspace(row)
}

func (r *WorkspaceRepository) getOne(query string, args ...any) (*domain.Workspace, error) {
	workspace, err := scanWorkspace(r.pool.QueryRow(context.Background(), query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWorkspaceNotFound
		}
		return nil, err
	}
	return workspace, nil
}

func scanWorkspace(row pgx.Row) (*domain.Workspace, error) {
	var (
		userID    pgtype.UUID
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
		ws        domain.Workspace
	)
	if err := row.Scan(&ws.ID, &userID, &ws.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	ws.UserID = uuid.UUID(userID.Bytes)
	ws.CreatedAt = createdAt.Time
	ws.UpdatedAt = updatedAt.Time
	return &ws, nil
}
