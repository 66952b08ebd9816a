// Package identity implements registration, login, token refresh, and
// logout over the user store and the JWT infrastructure.
package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auctionhouse/backend/internal/domain/identity"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/infrastructure/auth"
)

// RegisterInput carries a registration payload
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// LoginInput carries a login payload
type LoginInput struct {
	Email    string
	Password string
}

// UserResponse represents a user in API responses. The password hash
// never leaves the service.
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AuthResponse bundles the user with a fresh token pair
type AuthResponse struct {
	User   UserResponse    `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

// AuthService handles authentication use cases
type AuthService struct {
	users     identity.Repository
	tokens    *auth.JWTService
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
	now       func() time.Time
}

// AuthServiceOption configures the auth service
type AuthServiceOption func(*AuthService)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) AuthServiceOption {
	return func(s *AuthService) { s.logger = l }
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) AuthServiceOption {
	return func(s *AuthService) { s.now = now }
}

// NewAuthService creates a new authentication service
func NewAuthService(users identity.Repository, tokens *auth.JWTService, blacklist auth.TokenBlacklist, opts ...AuthServiceOption) *AuthService {
	s := &AuthService{
		users:     users,
		tokens:    tokens,
		blacklist: blacklist,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new user account and logs it in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	exists, err := s.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An account with this email already exists")
	}

	user, err := identity.NewUser(input.Name, input.Email, input.Phone, input.Password, identity.RoleUser)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
	)
	return s.issueTokens(user)
}

// Login authenticates an email/password pair. Unknown email and wrong
// password produce the same error so the endpoint does not leak which
// accounts exist.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.CheckPassword(input.Password) {
		return nil, shared.NewDomainError("UNAUTHORIZED", "Invalid email or password")
	}
	if !user.Active {
		return nil, shared.NewDomainError("FORBIDDEN", "Account is disabled")
	}

	user.RecordLogin(s.now())
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a new token pair. The old
// refresh token is blacklisted so each one is single-use.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, shared.NewDomainError("UNAUTHORIZED", "Invalid refresh token")
	}

	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("UNAUTHORIZED", "Invalid refresh token")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active {
		return nil, shared.NewDomainError("UNAUTHORIZED", "Account is no longer active")
	}

	pair, err := s.tokens.RefreshTokenPair(refreshToken, user.Name)
	if err != nil {
		return nil, shared.NewDomainError("UNAUTHORIZED", "Invalid refresh token")
	}

	if s.blacklist != nil && claims.ID != "" {
		if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
			s.logger.Warn("failed to blacklist rotated refresh token", zap.Error(err))
		}
	}
	return pair, nil
}

// Logout revokes both tokens of the current session
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if s.blacklist == nil {
		return nil
	}

	if claims, err := s.tokens.ValidateAccessToken(accessToken); err == nil && claims.ID != "" {
		if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
			return err
		}
	}
	if refreshToken != "" {
		if claims, err := s.tokens.ValidateRefreshToken(refreshToken); err == nil && claims.ID != "" {
			if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
				return err
			}
		}
	}
	return nil
}

// LogoutAll revokes every outstanding token for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	if s.blacklist == nil {
		return nil
	}
	ttl := s.tokens.GetRefreshTokenExpiration()
	return s.blacklist.AddUserTokensToBlacklist(ctx, userID.String(), ttl)
}

// GetMe returns the authenticated user's own profile
func (s *AuthService) GetMe(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "User not found")
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *AuthService) issueTokens(user *identity.User) (*AuthResponse, error) {
	pair, err := s.tokens.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Name:   user.Name,
		Role:   string(user.Role),
	})
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: toUserResponse(user), Tokens: pair}, nil
}

// checkRevoked rejects blacklisted tokens and tokens issued before a
// logout-all cutoff
func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil {
		return nil
	}
	if claims.ID != "" {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			return err
		}
		if revoked {
			return shared.NewDomainError("UNAUTHORIZED", "Token has been revoked")
		}
	}
	invalidated, err := s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
	if err != nil {
		return err
	}
	if invalidated {
		return shared.NewDomainError("UNAUTHORIZED", "Token has been revoked")
	}
	return nil
}

func toUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        string(u.Role),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
