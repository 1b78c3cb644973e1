package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"civiclens-be/models"
	"civiclens-be/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000
	recentScanSize       = 100
	recentMarkerLimit    = 20
)

// ParseID converts a hex id from a request into an ObjectID.
func ParseID(id, what string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, validationError("Invalid " + what + " ID")
	}
	return oid, nil
}

// ParseStatus validates a status string.
func ParseStatus(status string) (models.IssueStatus, error) {
	s := models.IssueStatus(status)
	if !s.Valid() {
		return "", validationError("Invalid status")
	}
	return s, nil
}

// CreateIssueInput is a citizen report. IssueType may be an id or a key.
type CreateIssueInput struct {
	Title       string
	Description string
	Location    string
	Category    string
	IssueType   string
	PhotoURL    string
	ReportedBy  *primitive.ObjectID
}

// MapMarker is an issue projected for the map view.
type MapMarker struct {
	ID        primitive.ObjectID `json:"id"`
	Title     string             `json:"title"`
	Latitude  float64            `json:"latitude"`
	Longitude float64            `json:"longitude"`
	Location  string             `json:"location"`
	Status    models.IssueStatus `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
}

// NamedCount is one bucket of an analytics breakdown.
type NamedCount struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// DailyCount is the number of issues reported on one day.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// IssueAnalytics summarises the issue collection for the admin dashboard.
type IssueAnalytics struct {
	TotalIssues    int64              `json:"totalIssues"`
	OpenIssues     int64              `json:"openIssues"`
	IssuesByStatus []NamedCount       `json:"issuesByStatus"`
	IssuesByType   []NamedCount       `json:"issuesByType"`
	Last7Days      []DailyCount       `json:"last7Days"`
	TopVotedIssues []models.IssueView `json:"topVotedIssues"`
}

// IssueService creates issues, changes their status and records upvotes.
type IssueService struct {
	store    *repository.Store
	resolver *LocalityResolver
	now      func() time.Time
}

func NewIssueService(store *repository.Store, resolver *LocalityResolver) *IssueService {
	return &IssueService{store: store, resolver: resolver, now: time.Now}
}

// Create validates and stores a new issue. Status is always Reported and
// upvotes always zero.
func (s *IssueService) Create(ctx context.Context, in CreateIssueInput) (*models.Issue, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	location := strings.TrimSpace(in.Location)
	if location == "" {
		location = models.AutoDetectedLocation
	}

	switch {
	case title == "":
		return nil, validationError("Title is required")
	case description == "":
		return nil, validationError("Description is required")
	case len(title) > maxTitleLength:
		return nil, validationError(fmt.Sprintf("Title must be at most %d characters", maxTitleLength))
	case len(description) > maxDescriptionLength:
		return nil, validationError(fmt.Sprintf("Description must be at most %d characters", maxDescriptionLength))
	}

	issue := &models.Issue{
		Title:       title,
		Description: description,
		Location:    location,
		Category:    strings.TrimSpace(in.Category),
		PhotoURL:    strings.TrimSpace(in.PhotoURL),
		Status:      models.Reported,
		Upvotes:     0,
	}

	if ref := strings.TrimSpace(in.IssueType); ref != "" {
		issueType, err := s.lookupIssueType(ctx, ref)
		if err != nil {
			return nil, err
		}
		issue.IssueType = &issueType.ID
		if issue.Category == "" {
			issue.Category = issueType.Label
		}
	}

	if in.ReportedBy != nil {
		if _, err := s.store.Users.FindByID(ctx, *in.ReportedBy); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, validationError("Reporting user does not exist")
			}
			return nil, internalError("Failed to load reporting user", err)
		}
		issue.ReportedBy = in.ReportedBy
	}

	locality, err := s.resolver.Resolve(ctx, location)
	if err != nil {
		return nil, internalError("Failed to resolve locality", err)
	}
	if locality != nil {
		issue.Locality = &locality.ID
	}

	if err := s.store.Issues.Create(ctx, issue); err != nil {
		return nil, internalError("Failed to create issue", err)
	}
	return issue, nil
}

func (s *IssueService) lookupIssueType(ctx context.Context, ref string) (*models.IssueType, error) {
	if oid, err := primitive.ObjectIDFromHex(ref); err == nil {
		issueType, err := s.store.IssueTypes.FindByID(ctx, oid)
		if err == nil {
			return issueType, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, internalError("Failed to load issue type", err)
		}
	}

	issueType, err := s.store.IssueTypes.FindByKey(ctx, ref)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, validationError("Unknown issue type")
		}
		return nil, internalError("Failed to load issue type", err)
	}
	return issueType, nil
}

// List returns matching issues newest first with references expanded, and
// the total number of matches.
func (s *IssueService) List(ctx context.Context, filter repository.IssueFilter, page repository.Page) ([]models.IssueView, int64, error) {
	issues, err := s.store.Issues.List(ctx, filter, repository.NewestFirst, page)
	if err != nil {
		return nil, 0, internalError("Failed to retrieve issues", err)
	}

	total := int64(len(issues))
	if page.Limit > 0 || page.Offset > 0 {
		total, err = s.store.Issues.Count(ctx, filter)
		if err != nil {
			return nil, 0, internalError("Failed to count issues", err)
		}
	}

	views, err := s.Expand(ctx, issues)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// Get returns one issue with references expanded.
func (s *IssueService) Get(ctx context.Context, id primitive.ObjectID) (*models.IssueView, error) {
	issue, err := s.store.Issues.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Issue not found")
		}
		return nil, internalError("Failed to retrieve issue", err)
	}

	views, err := s.Expand(ctx, []models.Issue{*issue})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ChangeStatus overwrites the status. Any status may follow any other.
func (s *IssueService) ChangeStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Issue, error) {
	newStatus, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}

	issue, err := s.store.Issues.SetStatus(ctx, id, newStatus)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Issue not found")
		}
		return nil, internalError("Failed to update issue status", err)
	}
	return issue, nil
}

// Upvote adds exactly one vote. Callers are not de-duplicated.
func (s *IssueService) Upvote(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	issue, err := s.store.Issues.IncrementUpvotes(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Issue not found")
		}
		return nil, internalError("Failed to upvote issue", err)
	}
	return issue, nil
}

// Recent returns map markers for the newest issues whose location is a
// coordinate pair.
func (s *IssueService) Recent(ctx context.Context) ([]MapMarker, error) {
	issues, err := s.store.Issues.List(ctx, repository.IssueFilter{}, repository.NewestFirst, repository.Page{Limit: recentScanSize})
	if err != nil {
		return nil, internalError("Failed to retrieve recent issues", err)
	}

	markers := []MapMarker{}
	for _, issue := range issues {
		lat, lng, ok := ParseCoordinates(issue.Location)
		if !ok {
			continue
		}
		markers = append(markers, MapMarker{
			ID:        issue.ID,
			Title:     issue.Title,
			Latitude:  lat,
			Longitude: lng,
			Location:  issue.Location,
			Status:    issue.Status,
			CreatedAt: issue.CreatedAt,
		})
		if len(markers) == recentMarkerLimit {
			break
		}
	}
	return markers, nil
}

// Analytics computes dashboard totals.
func (s *IssueService) Analytics(ctx context.Context) (*IssueAnalytics, error) {
	fail := func(err error) (*IssueAnalytics, error) {
		return nil, internalError("Failed to compute analytics", err)
	}

	total, err := s.store.Issues.Count(ctx, repository.IssueFilter{})
	if err != nil {
		return fail(err)
	}

	result := &IssueAnalytics{TotalIssues: total}

	for _, status := range models.IssueStatuses {
		status := status
		count, err := s.store.Issues.Count(ctx, repository.IssueFilter{Status: &status})
		if err != nil {
			return fail(err)
		}
		result.IssuesByStatus = append(result.IssuesByStatus, NamedCount{Name: string(status), Value: count})
		if status.Open() {
			result.OpenIssues += count
		}
	}

	types, err := s.store.IssueTypes.List(ctx, repository.Page{})
	if err != nil {
		return fail(err)
	}
	typed := int64(0)
	for _, issueType := range types {
		id := issueType.ID
		count, err := s.store.Issues.Count(ctx, repository.IssueFilter{IssueType: &id})
		if err != nil {
			return fail(err)
		}
		typed += count
		result.IssuesByType = append(result.IssuesByType, NamedCount{Name: issueType.Label, Value: count})
	}
	if untyped := total - typed; untyped > 0 {
		result.IssuesByType = append(result.IssuesByType, NamedCount{Name: "Uncategorised", Value: untyped})
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		next := day.AddDate(0, 0, 1)
		count, err := s.store.Issues.Count(ctx, repository.IssueFilter{Since: &day, Until: &next})
		if err != nil {
			return fail(err)
		}
		result.Last7Days = append(result.Last7Days, DailyCount{Date: day.Format("2006-01-02"), Count: count})
	}

	top, err := s.store.Issues.List(ctx, repository.IssueFilter{}, repository.MostUpvoted, repository.Page{Limit: 5})
	if err != nil {
		return fail(err)
	}
	result.TopVotedIssues, err = s.Expand(ctx, top)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Expand resolves the issue type, locality and reporter of every issue with
// one multi-get per collection.
func (s *IssueService) Expand(ctx context.Context, issues []models.Issue) ([]models.IssueView, error) {
	var typeIDs, localityIDs, userIDs []primitive.ObjectID
	for _, issue := range issues {
		if issue.IssueType != nil {
			typeIDs = append(typeIDs, *issue.IssueType)
		}
		if issue.Locality != nil {
			localityIDs = append(localityIDs, *issue.Locality)
		}
		if issue.ReportedBy != nil {
			userIDs = append(userIDs, *issue.ReportedBy)
		}
	}

	types, err := s.store.IssueTypes.FindByIDs(ctx, typeIDs)
	if err != nil {
		return nil, internalError("Failed to load issue types", err)
	}
	localities, err := s.store.Localities.FindByIDs(ctx, localityIDs)
	if err != nil {
		return nil, internalError("Failed to load localities", err)
	}
	users, err := s.store.Users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, internalError("Failed to load reporters", err)
	}

	typeRefs := make(map[primitive.ObjectID]*models.IssueTypeRef, len(types))
	for _, t := range types {
		typeRefs[t.ID] = &models.IssueTypeRef{ID: t.ID, Key: t.Key, Label: t.Label}
	}
	localityRefs := make(map[primitive.ObjectID]*models.LocalityRef, len(localities))
	for _, l := range localities {
		localityRefs[l.ID] = &models.LocalityRef{ID: l.ID, Name: l.Name, City: l.City, State: l.State}
	}
	userRefs := make(map[primitive.ObjectID]*models.UserRef, len(users))
	for _, u := range users {
		userRefs[u.ID] = &models.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
	}

	views := make([]models.IssueView, 0, len(issues))
	for _, issue := range issues {
		view := models.IssueView{
			ID:          issue.ID,
			Title:       issue.Title,
			Description: issue.Description,
			Location:    issue.Location,
			Category:    issue.Category,
			Status:      issue.Status,
			Upvotes:     issue.Upvotes,
			PhotoURL:    issue.PhotoURL,
			CreatedAt:   issue.CreatedAt,
			UpdatedAt:   issue.UpdatedAt,
		}
		if issue.IssueType != nil {
			view.IssueType = typeRefs[*issue.IssueType]
		}
		if issue.Locality != nil {
			view.Locality = localityRefs[*issue.Locality]
		}
		if issue.ReportedBy != nil {
			view.ReportedBy = userRefs[*issue.ReportedBy]
		}
		views = append(views, view)
	}
	return views, nil
}
