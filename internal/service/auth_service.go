package service

import (
	"errors"

	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultWorkspaceName is the name of the workspace created on first login
const DefaultWorkspaceName = "Personal"

// AuthService maps Auth0 identities to users and their workspace
type AuthService struct {
	userRepo      domain.UserRepository
	workspaceRepo domain.WorkspaceRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, workspaceRepo domain.WorkspaceRepository) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		workspaceRepo: workspaceRepo,
	}
}

// AuthResult represents the result of an authentication operation
type AuthResult struct {
	User      *domain.User
	Workspace *domain.Workspace
	IsNewUser bool
}

// AuthenticateUser upserts the user behind an Auth0 login and makes sure they
// own a workspace. IsNewUser is true when the workspace had to be created.
func (s *AuthService) AuthenticateUser(auth0ID, email string, name, pictureURL *string) (*AuthResult, error) {
	user, err := s.userRepo.CreateOrGetByAuth0ID(auth0ID, email, name, pictureURL)
	if err != nil {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to create or get user")
		return nil, err
	}

	workspace, created, err := s.ensureWorkspace(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to resolve workspace")
		return nil, err
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Int32("workspace_id", workspace.ID).
		Bool("new_user", created).
		Msg("User authenticated")

	return &AuthResult{
		User:      user,
		Workspace: workspace,
		IsNewUser: created,
	}, nil
}

// GetUserByAuth0ID retrieves a user by their Auth0 ID
func (s *AuthService) GetUserByAuth0ID(auth0ID string) (*domain.User, error) {
	return s.userRepo.GetByAuth0ID(auth0ID)
}

// GetWorkspaceByID retrieves a workspace by ID
func (s *AuthService) GetWorkspaceByID(workspaceID int32) (*domain.Workspace, error) {
	return s.workspaceRepo.GetByID(workspaceID)
}

// GetWorkspaceByAuth0ID retrieves a user's workspace by their Auth0 ID
func (s *AuthService) GetWorkspaceByAuth0ID(auth0ID string) (*domain.Workspace, error) {
	return s.workspaceRepo.GetByUserAuth0ID(auth0ID)
}

func (s *AuthService) ensureWorkspace(userID uuid.UUID) (*domain.Workspace, bool, error) {
	workspace, err := s.workspaceRepo.GetByUserID(userID)
	if err == nil {
		return workspace, false, nil
	}
	if !errors.Is(err, domain.ErrWorkspaceNotFound) {
		return nil, false, err
	}

	workspace, err = s.workspaceRepo.Create(&domain.Workspace{
		UserID: userID,
		Name:   DefaultWorkspaceName,
	})
	if err != nil {
		return nil, false, err
	}
	return workspace, true, nil
}
