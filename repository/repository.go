// Package repository is the document store adapter: one interface per
// collection with a MongoDB implementation and an in-process one.
package repository

import (
	"context"
	"errors"
	"time"

	"civiclens-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no document matches.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate key")
)

// Page selects a window of a sorted result set. A zero Limit means no limit.
type Page struct {
	Offset int64
	Limit  int64
}

// IssueFilter narrows issue queries. Nil fields do not filter.
type IssueFilter struct {
	Status    *models.IssueStatus
	Locality  *primitive.ObjectID
	IssueType *primitive.ObjectID
	Since     *time.Time
	Until     *time.Time
}

// IssueSort orders issue listings.
type IssueSort int

const (
	NewestFirst IssueSort = iota
	MostUpvoted
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, page Page) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

type IssueRepository interface {
	Create(ctx context.Context, issue *models.Issue) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	List(ctx context.Context, filter IssueFilter, sort IssueSort, page Page) ([]models.Issue, error)
	Count(ctx context.Context, filter IssueFilter) (int64, error)
	// SetStatus overwrites the status and returns the updated document.
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.IssueStatus) (*models.Issue, error)
	// IncrementUpvotes adds one to the counter atomically and returns the
	// updated document.
	IncrementUpvotes(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
}

type IssueTypeRepository interface {
	Create(ctx context.Context, issueType *models.IssueType) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.IssueType, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.IssueType, error)
	FindByKey(ctx context.Context, key string) (*models.IssueType, error)
	List(ctx context.Context, page Page) ([]models.IssueType, error)
	Count(ctx context.Context) (int64, error)
}

type LocalityRepository interface {
	Create(ctx context.Context, locality *models.Locality) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Locality, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Locality, error)
	FindByName(ctx context.Context, name string) (*models.Locality, error)
	List(ctx context.Context, page Page) ([]models.Locality, error)
	// WithCoordinates returns every locality that has both coordinates, in
	// insertion order.
	WithCoordinates(ctx context.Context) ([]models.Locality, error)
	Count(ctx context.Context) (int64, error)
}

// Store bundles the four collections.
type Store struct {
	Users      UserRepository
	Issues     IssueRepository
	IssueTypes IssueTypeRepository
	Localities LocalityRepository
}
