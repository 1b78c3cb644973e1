package services

import (
	"context"
	"errors"
	"strings"

	"civiclens-be/models"
	"civiclens-be/repository"
)

// CatalogService manages the read-mostly collections: issue types,
// localities and the user directory.
type CatalogService struct {
	store     *repository.Store
	promotion PromotionPolicy
}

func NewCatalogService(store *repository.Store, promotion PromotionPolicy) *CatalogService {
	return &CatalogService{store: store, promotion: promotion}
}

type IssueTypeInput struct {
	Key         string
	Label       string
	Description string
	Icon        string
}

func (s *CatalogService) CreateIssueType(ctx context.Context, in IssueTypeInput) (*models.IssueType, error) {
	key := strings.ToLower(strings.TrimSpace(in.Key))
	label := strings.TrimSpace(in.Label)
	if key == "" || label == "" {
		return nil, validationError("Key and label are required")
	}

	issueType := &models.IssueType{
		Key:         key,
		Label:       label,
		Description: strings.TrimSpace(in.Description),
		Icon:        strings.TrimSpace(in.Icon),
	}
	if err := s.store.IssueTypes.Create(ctx, issueType); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflictError("Issue type with this key already exists")
		}
		return nil, internalError("Failed to create issue type", err)
	}
	return issueType, nil
}

func (s *CatalogService) ListIssueTypes(ctx context.Context, page repository.Page) ([]models.IssueType, int64, error) {
	types, err := s.store.IssueTypes.List(ctx, page)
	if err != nil {
		return nil, 0, internalError("Failed to retrieve issue types", err)
	}
	total, err := s.store.IssueTypes.Count(ctx)
	if err != nil {
		return nil, 0, internalError("Failed to count issue types", err)
	}
	return types, total, nil
}

type LocalityInput struct {
	Name      string
	City      string
	State     string
	Country   string
	Latitude  *float64
	Longitude *float64
}

func (s *CatalogService) CreateLocality(ctx context.Context, in LocalityInput) (*models.Locality, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("Name is required")
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, validationError("Latitude and longitude must be given together")
	}
	if in.Latitude != nil {
		if !finite(*in.Latitude) || *in.Latitude < -90 || *in.Latitude > 90 {
			return nil, validationError("Latitude must be between -90 and 90")
		}
		if !finite(*in.Longitude) || *in.Longitude < -180 || *in.Longitude > 180 {
			return nil, validationError("Longitude must be between -180 and 180")
		}
	}

	locality := &models.Locality{
		Name:      name,
		City:      strings.TrimSpace(in.City),
		State:     strings.TrimSpace(in.State),
		Country:   strings.TrimSpace(in.Country),
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}
	if err := s.store.Localities.Create(ctx, locality); err != nil {
		return nil, internalError("Failed to create locality", err)
	}
	return locality, nil
}

func (s *CatalogService) ListLocalities(ctx context.Context, page repository.Page) ([]models.Locality, int64, error) {
	localities, err := s.store.Localities.List(ctx, page)
	if err != nil {
		return nil, 0, internalError("Failed to retrieve localities", err)
	}
	total, err := s.store.Localities.Count(ctx)
	if err != nil {
		return nil, 0, internalError("Failed to count localities", err)
	}
	return localities, total, nil
}

type UserInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     string
}

// CreateUser adds an account directly. Admin accounts still go through the
// promotion policy.
func (s *CatalogService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := models.NormalizeEmail(in.Email)
	if name == "" || email == "" {
		return nil, validationError("Name and email are required")
	}
	role, err := parseRole(in.Role)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Phone:    strings.TrimSpace(in.Phone),
		Role:     models.RoleCitizen,
		Provider: models.ProviderLocal,
	}
	if role == models.RoleAdmin {
		if !s.promotion.AllowAdmin(ctx, user) {
			return nil, forbiddenError("Admin accounts are not permitted for this email")
		}
		user.Role = models.RoleAdmin
	}
	if in.Password != "" {
		if len(in.Password) < minPasswordLength {
			return nil, validationError("Password must be at least 6 characters")
		}
		user.Password = in.Password
		if err := user.HashPassword(); err != nil {
			return nil, internalError("Failed to hash password", err)
		}
	}

	if err := s.store.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflictError("User with this email already exists")
		}
		return nil, internalError("Failed to create user", err)
	}
	return user, nil
}

func (s *CatalogService) ListUsers(ctx context.Context, page repository.Page) ([]models.User, int64, error) {
	users, err := s.store.Users.List(ctx, page)
	if err != nil {
		return nil, 0, internalError("Failed to retrieve users", err)
	}
	total, err := s.store.Users.Count(ctx)
	if err != nil {
		return nil, 0, internalError("Failed to count users", err)
	}
	return users, total, nil
}
