package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/dafibh/budgetly/budgetly-backend/internal/middleware"
	"github.com/dafibh/budgetly/budgetly-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// ProfileResponse represents the profile response
type ProfileResponse struct {
	User      UserResponse      `json:"user"`
	Workspace WorkspaceResponse `json:"workspace"`
}

// UpdateProfileRequest represents the update profile request
type UpdateProfileRequest struct {
	Name string `json:"name"`
}

// GetProfile handles GET /api/v1/profile
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	profile, err := h.profileService.GetProfile(auth0ID)
	if err != nil {
		return h.profileError(c, err, auth0ID, "get profile")
	}

	return c.JSON(http.StatusOK, toProfileResponse(profile))
}

// UpdateProfile handles PUT /api/v1/profile
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	profile, err := h.profileService.UpdateProfile(auth0ID, req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		}
		if errors.Is(err, domain.ErrNameTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name must be 255 characters or less"},
			})
		}
		return h.profileError(c, err, auth0ID, "update profile")
	}

	return c.JSON(http.StatusOK, toProfileResponse(profile))
}

func (h *ProfileHandler) profileError(c echo.Context, err error, auth0ID, action string) error {
	if errors.Is(err, domain.ErrUserNotFound) {
		return NewNotFoundError(c, "User not found")
	}
	if errors.Is(err, domain.ErrWorkspaceNotFound) {
		return NewNotFoundError(c, "Workspace not found")
	}
	log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to " + action)
	return NewInternalError(c, "Failed to "+action)
}

func toProfileResponse(p *service.Profile) ProfileResponse {
	return ProfileResponse{
		User:      toUserResponse(p.User),
		Workspace: toWorkspaceResponse(p.Workspace),
	}
}
