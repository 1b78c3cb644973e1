package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"civiclens-be/models"
	"civiclens-be/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const minPasswordLength = 6

// TokenIssuer signs and verifies bearer credentials carrying a user id.
type TokenIssuer interface {
	GenerateUserToken(userID string) (string, error)
	ParseUserToken(token string) (string, error)
}

// StateCodec carries the requested role through the federated redirect,
// together with a nonce bound to the browser that started the flow.
type StateCodec interface {
	Encode(role models.Role) (state, nonce string, err error)
	Decode(state string) (role models.Role, nonce string, err error)
}

// FederatedProfile is what an identity provider tells us about a user.
type FederatedProfile struct {
	ID          string
	DisplayName string
	Emails      []string
	PhotoURL    string
}

// FederatedProvider is one configured external identity provider.
type FederatedProvider interface {
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (*FederatedProfile, error)
}

// AuthResult is a signed credential and the account it belongs to.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// RegisterInput is a local sign-up request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     string
}

// AuthService is the auth gateway: local credentials, federated login and
// bearer credential validation.
type AuthService struct {
	users     repository.UserRepository
	tokens    TokenIssuer
	states    StateCodec
	promotion PromotionPolicy
	providers map[string]FederatedProvider
}

// NewAuthService builds the gateway. providers may be empty, in which case
// federated login reports itself as unconfigured.
func NewAuthService(users repository.UserRepository, tokens TokenIssuer, states StateCodec, promotion PromotionPolicy, providers map[string]FederatedProvider) *AuthService {
	if providers == nil {
		providers = map[string]FederatedProvider{}
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		states:    states,
		promotion: promotion,
		providers: providers,
	}
}

func parseRole(role string) (models.Role, error) {
	if role == "" {
		return models.RoleCitizen, nil
	}
	r := models.Role(strings.ToLower(strings.TrimSpace(role)))
	if !r.Valid() {
		return "", validationError("Invalid role")
	}
	return r, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateUserToken(user.ID.Hex())
	if err != nil {
		return nil, internalError("Failed to issue token", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Register creates a local account. A second registration for the same
// email fails with a conflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := models.NormalizeEmail(in.Email)
	switch {
	case name == "":
		return nil, validationError("Name is required")
	case email == "":
		return nil, validationError("Email is required")
	case len(in.Password) < minPasswordLength:
		return nil, validationError("Password must be at least 6 characters")
	}

	role, err := parseRole(in.Role)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, conflictError("User with this email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, internalError("Failed to check existing user", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: in.Password,
		Phone:    strings.TrimSpace(in.Phone),
		Role:     models.RoleCitizen,
		Provider: models.ProviderLocal,
	}
	if role == models.RoleAdmin {
		if !s.promotion.AllowAdmin(ctx, user) {
			return nil, forbiddenError("Admin registration is not permitted for this account")
		}
		user.Role = models.RoleAdmin
	}

	if err := user.HashPassword(); err != nil {
		return nil, internalError("Failed to hash password", err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflictError("User with this email already exists")
		}
		return nil, internalError("Failed to create user", err)
	}
	return s.issue(user)
}

// Login checks local credentials. When expectedRole is set the stored role
// must match it.
func (s *AuthService) Login(ctx context.Context, email, password, expectedRole string) (*AuthResult, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationError("Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, unauthorizedError("Invalid credentials")
		}
		return nil, internalError("Failed to load user", err)
	}
	if !user.ComparePassword(password) {
		return nil, unauthorizedError("Invalid credentials")
	}

	if expectedRole != "" && models.Role(strings.ToLower(expectedRole)) != user.Role {
		return nil, forbiddenError("Access denied for this role")
	}
	return s.issue(user)
}

// Authenticate validates a bearer credential and re-reads the account it
// names. Only the user id is taken from the credential.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, unauthorizedError("No authorization token provided")
	}
	userID, err := s.tokens.ParseUserToken(token)
	if err != nil {
		return nil, unauthorizedError("Invalid authorization token")
	}
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, unauthorizedError("Invalid authorization token")
	}

	user, err := s.users.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, unauthorizedError("User not found")
		}
		return nil, internalError("Failed to load user", err)
	}
	return user, nil
}

// FederatedEnabled reports whether the named provider is configured.
func (s *AuthService) FederatedEnabled(provider string) bool {
	_, ok := s.providers[provider]
	return ok
}

// StartFederated returns the provider URL to send the caller to, and the
// nonce the caller must keep for the callback. The requested role travels
// in the signed state value.
func (s *AuthService) StartFederated(provider, role string) (redirectURL, nonce string, err error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", "", internalError(provider+" authentication is not configured", nil)
	}
	requested, err := parseRole(role)
	if err != nil {
		return "", "", err
	}
	state, nonce, err := s.states.Encode(requested)
	if err != nil {
		return "", "", internalError("Failed to encode state", err)
	}
	return p.AuthCodeURL(state), nonce, nil
}

// CompleteFederated exchanges the callback code for a profile and resolves
// it to a local account. nonce is the value the browser kept from
// StartFederated and must match the one inside state.
func (s *AuthService) CompleteFederated(ctx context.Context, provider, state, nonce, code string) (*AuthResult, error) {
	p, ok := s.providers[provider]
	if !ok {
		return nil, internalError(provider+" authentication is not configured", nil)
	}
	if code == "" {
		return nil, validationError("Missing authorization code")
	}
	role, expected, err := s.states.Decode(state)
	if err != nil {
		return nil, unauthorizedError("Invalid state")
	}
	if nonce == "" || subtle.ConstantTimeCompare([]byte(nonce), []byte(expected)) != 1 {
		return nil, unauthorizedError("State does not belong to this browser")
	}

	profile, err := p.FetchProfile(ctx, code)
	if err != nil {
		return nil, upstreamError("Failed to fetch profile", err)
	}
	return s.ResolveFederated(ctx, profile, role)
}

// ResolveFederated maps a provider profile to a local user: by federated id,
// then by email (linking the id onto that account), else a new citizen
// account. An admin request promotes a citizen only if the promotion policy
// allows it.
func (s *AuthService) ResolveFederated(ctx context.Context, profile *FederatedProfile, requested models.Role) (*AuthResult, error) {
	if profile == nil || profile.ID == "" {
		return nil, validationError("Profile has no identifier")
	}

	user, err := s.users.FindByGoogleID(ctx, profile.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, internalError("Failed to load user", err)
	}

	email := ""
	if len(profile.Emails) > 0 {
		email = models.NormalizeEmail(profile.Emails[0])
	}

	if user == nil && email != "" {
		user, err = s.users.FindByEmail(ctx, email)
		switch {
		case err == nil:
			if user.GoogleID != "" && user.GoogleID != profile.ID {
				slog.Warn("refusing to relink account to a different google identity", "user_id", user.ID.Hex())
				return nil, conflictError("This account is already linked to a different Google identity")
			}
			user.GoogleID = profile.ID
			if user.PictureURL == "" {
				user.PictureURL = profile.PhotoURL
			}
			if err := s.users.Update(ctx, user); err != nil {
				return nil, internalError("Failed to link account", err)
			}
		case errors.Is(err, repository.ErrNotFound):
			user = nil
		default:
			return nil, internalError("Failed to load user", err)
		}
	}

	if user == nil {
		if email == "" {
			return nil, validationError("Profile has no email address")
		}
		user = &models.User{
			Name:       displayName(profile, email),
			Email:      email,
			Role:       models.RoleCitizen,
			Provider:   models.ProviderGoogle,
			GoogleID:   profile.ID,
			PictureURL: profile.PhotoURL,
		}
		if err := s.users.Create(ctx, user); err != nil {
			if !errors.Is(err, repository.ErrDuplicate) {
				return nil, internalError("Failed to create user", err)
			}
			// A concurrent callback created the account first.
			existing, findErr := s.users.FindByGoogleID(ctx, profile.ID)
			if findErr != nil {
				if errors.Is(findErr, repository.ErrNotFound) {
					return nil, conflictError("User with this email already exists")
				}
				return nil, internalError("Failed to load user", findErr)
			}
			user = existing
		}
	}

	if requested == models.RoleAdmin && user.Role == models.RoleCitizen {
		if s.promotion.AllowAdmin(ctx, user) {
			user.Role = models.RoleAdmin
			if err := s.users.Update(ctx, user); err != nil {
				return nil, internalError("Failed to promote user", err)
			}
			slog.Info("promoted user to admin via federated login", "user_id", user.ID.Hex())
		} else {
			slog.Warn("admin promotion denied by policy", "user_id", user.ID.Hex())
		}
	}

	return s.issue(user)
}

func displayName(profile *FederatedProfile, email string) string {
	if name := strings.TrimSpace(profile.DisplayName); name != "" {
		return name
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
