package service

import (
	"strings"

	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// ProfileService handles profile-related business logic
type ProfileService struct {
	userRepo      domain.UserRepository
	workspaceRepo domain.WorkspaceRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo domain.UserRepository, workspaceRepo domain.WorkspaceRepository) *ProfileService {
	return &ProfileService{
		userRepo:      userRepo,
		workspaceRepo: workspaceRepo,
	}
}

// Profile is a user together with the workspace their budgets live in
type Profile struct {
	User      *domain.User
	Workspace *domain.Workspace
}

// GetProfile retrieves a user's profile by Auth0 ID
func (s *ProfileService) GetProfile(auth0ID string) (*Profile, error) {
	user, err := s.userRepo.GetByAuth0ID(auth0ID)
	if err != nil {
		return nil, err
	}
	return s.withWorkspace(user)
}

// UpdateProfile sets a user's display name by Auth0 ID
func (s *ProfileService) UpdateProfile(auth0ID string, name string) (*Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}

	user, err := s.userRepo.UpdateName(auth0ID, name)
	if err != nil {
		return nil, err
	}

	log.Info().Str("auth0_id", auth0ID).Msg("Profile updated")
	return s.withWorkspace(user)
}

func (s *ProfileService) withWorkspace(user *domain.User) (*Profile, error) {
	workspace, err := s.workspaceRepo.GetByUserID(user.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Workspace: workspace}, nil
}
