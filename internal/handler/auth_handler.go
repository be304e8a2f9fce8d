package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/budgetly/budgetly-backend/internal/domain"
	"github.com/dafibh/budgetly/budgetly-backend/internal/middleware"
	"github.com/dafibh/budgetly/budgetly-backend/internal/service"
	"github.com/dafibh/budgetly/budgetly-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AuthHandler opens and inspects sessions for Auth0-authenticated callers
type AuthHandler struct {
	authService *service.AuthService
	clock       util.Clock
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService, clock util.Clock) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		clock:       clock,
	}
}

// SessionResponse describes the caller's session. ServerTime lets the client
// compute "today" and "this month" against the server's reference clock.
type SessionResponse struct {
	User       UserResponse       `json:"user"`
	Workspace  WorkspaceResponse  `json:"workspace"`
	IsNewUser  bool               `json:"isNewUser"`
	ServerTime ServerTimeResponse `json:"serverTime"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	Name       *string `json:"name"`
	PictureURL *string `json:"pictureUrl"`
}

// WorkspaceResponse represents a workspace in API responses
type WorkspaceResponse struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// Callback handles POST /api/v1/auth/callback.
// The first call for an Auth0 identity provisions the user and the workspace
// their budgets and transactions are scoped to.
func (h *AuthHandler) Callback(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	email, name, picture := claimsProfile(c)
	if email == "" {
		log.Warn().Str("auth0_id", auth0ID).Msg("Token carries no email claim")
		return NewValidationError(c, "Email is required for authentication", []ValidationError{
			{Field: "email", Message: "Email claim is missing from token"},
		})
	}

	result, err := h.authService.AuthenticateUser(auth0ID, email, name, picture)
	if err != nil {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to authenticate user")
		return NewInternalError(c, "Failed to authenticate user")
	}

	return c.JSON(http.StatusOK, h.session(result.User, result.Workspace, result.IsNewUser))
}

// Me handles GET /api/v1/auth/me for a caller whose workspace the auth
// middleware has already resolved.
func (h *AuthHandler) Me(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	user, err := h.authService.GetUserByAuth0ID(auth0ID)
	if err != nil {
		return sessionError(c, err, auth0ID)
	}
	workspace, err := h.authService.GetWorkspaceByID(workspaceID)
	if err != nil {
		return sessionError(c, err, auth0ID)
	}

	return c.JSON(http.StatusOK, h.session(user, workspace, false))
}

// Logout handles POST /api/v1/auth/logout. Auth0 owns the session, so this
// only records the event.
func (h *AuthHandler) Logout(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	log.Info().Str("auth0_id", auth0ID).Msg("User logged out")
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) session(user *domain.User, workspace *domain.Workspace, isNew bool) SessionResponse {
	return SessionResponse{
		User:       toUserResponse(user),
		Workspace:  toWorkspaceResponse(workspace),
		IsNewUser:  isNew,
		ServerTime: serverTime(h.clock.Now()),
	}
}

func sessionError(c echo.Context, err error, auth0ID string) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return NewNotFoundError(c, "User not found")
	case errors.Is(err, domain.ErrWorkspaceNotFound):
		return NewNotFoundError(c, "Workspace not found")
	}
	log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to load session")
	return NewInternalError(c, "Failed to load session")
}

// claimsProfile reads the optional profile claims; empty name and picture become nil
func claimsProfile(c echo.Context) (email string, name, picture *string) {
	claims := middleware.GetCustomClaims(c)
	if claims == nil {
		return "", nil, nil
	}
	if claims.Name != "" {
		n := claims.Name
		name = &n
	}
	if claims.Picture != "" {
		p := claims.Picture
		picture = &p
	}
	return claims.Email, name, picture
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:         u.ID.String(),
		Email:      u.Email,
		Name:       u.Name,
		PictureURL: u.PictureURL,
	}
}

func toWorkspaceResponse(w *domain.Workspace) WorkspaceResponse {
	return WorkspaceResponse{ID: w.ID, Name: w.Name}
}
