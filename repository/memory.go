package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"civiclens-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryDB keeps every collection in insertion order behind one lock.
// Returned documents are copies.
type memoryDB struct {
	mu         sync.RWMutex
	users      []models.User
	issues     []models.Issue
	issueTypes []models.IssueType
	localities []models.Locality
}

// NewMemoryStore returns a Store backed by process memory. Data is lost on
// restart.
func NewMemoryStore() *Store {
	db := &memoryDB{}
	return &Store{
		Users:      &memoryUserRepository{db: db},
		Issues:     &memoryIssueRepository{db: db},
		IssueTypes: &memoryIssueTypeRepository{db: db},
		Localities: &memoryLocalityRepository{db: db},
	}
}

func window[T any](items []T, page Page) []T {
	if page.Offset < 0 || page.Offset >= int64(len(items)) {
		return []T{}
	}
	items = items[page.Offset:]
	if page.Limit > 0 && page.Limit < int64(len(items)) {
		items = items[:page.Limit]
	}
	return items
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

type memoryUserRepository struct {
	db *memoryDB
}

func (r *memoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.users {
		if existing.Email == user.Email {
			return ErrDuplicate
		}
		if user.GoogleID != "" && existing.GoogleID == user.GoogleID {
			return ErrDuplicate
		}
	}

	now := time.Now()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	r.db.users = append(r.db.users, *user)
	return nil
}

func (r *memoryUserRepository) find(match func(models.User) bool) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, user := range r.db.users {
		if match(user) {
			found := user
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *memoryUserRepository) FindByGoogleID(_ context.Context, googleID string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.GoogleID != "" && u.GoogleID == googleID })
}

func (r *memoryUserRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var users []models.User
	for _, user := range r.db.users {
		if containsID(ids, user.ID) {
			users = append(users, user)
		}
	}
	return users, nil
}

func (r *memoryUserRepository) Update(_ context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	index := -1
	for i, existing := range r.db.users {
		if existing.ID == user.ID {
			index = i
			continue
		}
		if existing.Email == user.Email || (user.GoogleID != "" && existing.GoogleID == user.GoogleID) {
			return ErrDuplicate
		}
	}
	if index < 0 {
		return ErrNotFound
	}

	user.UpdatedAt = time.Now()
	r.db.users[index] = *user
	return nil
}

func (r *memoryUserRepository) List(_ context.Context, page Page) ([]models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	users := make([]models.User, len(r.db.users))
	for i := range r.db.users {
		users[len(users)-1-i] = r.db.users[i]
	}
	return window(users, page), nil
}

func (r *memoryUserRepository) Count(_ context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.users)), nil
}

type memoryIssueRepository struct {
	db *memoryDB
}

func matchesIssue(issue models.Issue, filter IssueFilter) bool {
	if filter.Status != nil && issue.Status != *filter.Status {
		return false
	}
	if filter.Locality != nil && (issue.Locality == nil || *issue.Locality != *filter.Locality) {
		return false
	}
	if filter.IssueType != nil && (issue.IssueType == nil || *issue.IssueType != *filter.IssueType) {
		return false
	}
	if filter.Since != nil && issue.CreatedAt.Before(*filter.Since) {
		return false
	}
	if filter.Until != nil && !issue.CreatedAt.Before(*filter.Until) {
		return false
	}
	return true
}

func (r *memoryIssueRepository) Create(_ context.Context, issue *models.Issue) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := time.Now()
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now
	}
	issue.UpdatedAt = now
	r.db.issues = append(r.db.issues, *issue)
	return nil
}

func (r *memoryIssueRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, issue := range r.db.issues {
		if issue.ID == id {
			found := issue
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryIssueRepository) List(_ context.Context, filter IssueFilter, order IssueSort, page Page) ([]models.Issue, error) {
	r.db.mu.RLock()
	// Walk newest insertion first so equal timestamps keep that order.
	issues := []models.Issue{}
	for i := len(r.db.issues) - 1; i >= 0; i-- {
		if matchesIssue(r.db.issues[i], filter) {
			issues = append(issues, r.db.issues[i])
		}
	}
	r.db.mu.RUnlock()

	sort.SliceStable(issues, func(i, j int) bool {
		if order == MostUpvoted && issues[i].Upvotes != issues[j].Upvotes {
			return issues[i].Upvotes > issues[j].Upvotes
		}
		return issues[i].CreatedAt.After(issues[j].CreatedAt)
	})
	return window(issues, page), nil
}

func (r *memoryIssueRepository) Count(_ context.Context, filter IssueFilter) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var count int64
	for _, issue := range r.db.issues {
		if matchesIssue(issue, filter) {
			count++
		}
	}
	return count, nil
}

func (r *memoryIssueRepository) mutate(id primitive.ObjectID, apply func(*models.Issue)) (*models.Issue, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.issues {
		if r.db.issues[i].ID == id {
			apply(&r.db.issues[i])
			r.db.issues[i].UpdatedAt = time.Now()
			updated := r.db.issues[i]
			return &updated, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryIssueRepository) SetStatus(_ context.Context, id primitive.ObjectID, status models.IssueStatus) (*models.Issue, error) {
	return r.mutate(id, func(issue *models.Issue) { issue.Status = status })
}

func (r *memoryIssueRepository) IncrementUpvotes(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	return r.mutate(id, func(issue *models.Issue) { issue.Upvotes++ })
}

type memoryIssueTypeRepository struct {
	db *memoryDB
}

func (r *memoryIssueTypeRepository) Create(_ context.Context, issueType *models.IssueType) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.issueTypes {
		if existing.Key == issueType.Key {
			return ErrDuplicate
		}
	}

	now := time.Now()
	if issueType.ID.IsZero() {
		issueType.ID = primitive.NewObjectID()
	}
	issueType.CreatedAt = now
	issueType.UpdatedAt = now
	r.db.issueTypes = append(r.db.issueTypes, *issueType)
	return nil
}

func (r *memoryIssueTypeRepository) find(match func(models.IssueType) bool) (*models.IssueType, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, issueType := range r.db.issueTypes {
		if match(issueType) {
			found := issueType
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryIssueTypeRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.IssueType, error) {
	return r.find(func(t models.IssueType) bool { return t.ID == id })
}

func (r *memoryIssueTypeRepository) FindByKey(_ context.Context, key string) (*models.IssueType, error) {
	return r.find(func(t models.IssueType) bool { return t.Key == key })
}

func (r *memoryIssueTypeRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.IssueType, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var types []models.IssueType
	for _, issueType := range r.db.issueTypes {
		if containsID(ids, issueType.ID) {
			types = append(types, issueType)
		}
	}
	return types, nil
}

func (r *memoryIssueTypeRepository) List(_ context.Context, page Page) ([]models.IssueType, error) {
	r.db.mu.RLock()
	types := append([]models.IssueType{}, r.db.issueTypes...)
	r.db.mu.RUnlock()

	sort.SliceStable(types, func(i, j int) bool { return types[i].Label < types[j].Label })
	return window(types, page), nil
}

func (r *memoryIssueTypeRepository) Count(_ context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.issueTypes)), nil
}

type memoryLocalityRepository struct {
	db *memoryDB
}

func (r *memoryLocalityRepository) Create(_ context.Context, locality *models.Locality) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := time.Now()
	if locality.ID.IsZero() {
		locality.ID = primitive.NewObjectID()
	}
	locality.CreatedAt = now
	locality.UpdatedAt = now
	r.db.localities = append(r.db.localities, *locality)
	return nil
}

func (r *memoryLocalityRepository) find(match func(models.Locality) bool) (*models.Locality, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, locality := range r.db.localities {
		if match(locality) {
			found := locality
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryLocalityRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Locality, error) {
	return r.find(func(l models.Locality) bool { return l.ID == id })
}

func (r *memoryLocalityRepository) FindByName(_ context.Context, name string) (*models.Locality, error) {
	return r.find(func(l models.Locality) bool { return l.Name == name })
}

func (r *memoryLocalityRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Locality, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var localities []models.Locality
	for _, locality := range r.db.localities {
		if containsID(ids, locality.ID) {
			localities = append(localities, locality)
		}
	}
	return localities, nil
}

func (r *memoryLocalityRepository) List(_ context.Context, page Page) ([]models.Locality, error) {
	r.db.mu.RLock()
	localities := append([]models.Locality{}, r.db.localities...)
	r.db.mu.RUnlock()

	sort.SliceStable(localities, func(i, j int) bool { return localities[i].Name < localities[j].Name })
	return window(localities, page), nil
}

func (r *memoryLocalityRepository) WithCoordinates(_ context.Context) ([]models.Locality, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var localities []models.Locality
	for _, locality := range r.db.localities {
		if locality.HasCoordinates() {
			localities = append(localities, locality)
		}
	}
	return localities, nil
}

func (r *memoryLocalityRepository) Count(_ context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.localities)), nil
}
