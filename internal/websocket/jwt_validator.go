package websocket

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
)

var (
	// ErrInvalidToken is returned when JWT validation fails
	ErrInvalidToken = errors.New("invalid token")
	// ErrWorkspaceNotFound is returned when the token's subject has no workspace
	ErrWorkspaceNotFound = errors.New("workspace not found")
)

// TokenValidator resolves a bearer token passed on the upgrade request to a workspace
type TokenValidator interface {
	ValidateToken(token string) (workspaceID int32, err error)
}

// WorkspaceLookup provides workspace lookup by Auth0 ID
type WorkspaceLookup interface {
	GetWorkspaceByAuth0ID(auth0ID string) (workspaceID int32, err error)
}

// Auth0JWTValidator validates Auth0 access tokens for WebSocket connections.
// Browsers cannot set headers on the upgrade request so the token arrives as a query parameter.
type Auth0JWTValidator struct {
	validator       *validator.Validator
	workspaceLookup WorkspaceLookup
}

var _ TokenValidator = (*Auth0JWTValidator)(nil)

// NewAuth0JWTValidator creates a new Auth0JWTValidator
func NewAuth0JWTValidator(domain, audience string, workspaceLookup WorkspaceLookup) (*Auth0JWTValidator, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return &Auth0JWTValidator{
		validator:       jwtValidator,
		workspaceLookup: workspaceLookup,
	}, nil
}

// ValidateToken validates a JWT and returns the workspace of its subject
func (v *Auth0JWTValidator) ValidateToken(token string) (int32, error) {
	claims, err := v.validator.ValidateToken(context.Background(), token)
	if err != nil {
		return 0, ErrInvalidToken
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	workspaceID, err := v.workspaceLookup.GetWorkspaceByAuth0ID(validatedClaims.RegisteredClaims.Subject)
	if err != nil {
		return 0, ErrWorkspaceNotFound
	}
	return workspaceID, nil
}
