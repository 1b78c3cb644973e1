package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"civiclens-be/models"
)

func float(v float64) *float64 { return &v }

func TestMemoryUserUniqueness(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Users.Create(ctx, &models.User{Email: "a@x.com", GoogleID: "g-1"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tests := []struct {
		name string
		user models.User
	}{
		{"same email", models.User{Email: "a@x.com"}},
		{"same google id", models.User{Email: "b@x.com", GoogleID: "g-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := tt.user
			if err := store.Users.Create(ctx, &user); !errors.Is(err, ErrDuplicate) {
				t.Errorf("expected ErrDuplicate, got %v", err)
			}
		})
	}

	// Two local accounts without a google id must not collide.
	if err := store.Users.Create(ctx, &models.User{Email: "c@x.com"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Users.Create(ctx, &models.User{Email: "d@x.com"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
}

func TestMemoryUserUpdate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	user := &models.User{Email: "a@x.com", Role: models.RoleCitizen}
	if err := store.Users.Create(ctx, user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	user.Role = models.RoleAdmin
	if err := store.Users.Update(ctx, user); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.Users.FindByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if got.Role != models.RoleAdmin {
		t.Errorf("expected role admin, got %s", got.Role)
	}

	missing := &models.User{Email: "z@x.com"}
	if err := store.Users.Update(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryIssueListOrderAndFilter(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	locality := &models.Locality{Name: "Central"}
	if err := store.Localities.Create(ctx, locality); err != nil {
		t.Fatalf("Create locality failed: %v", err)
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"first", "second", "third"} {
		issue := &models.Issue{Title: title, Status: models.Reported, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if i == 1 {
			issue.Locality = &locality.ID
		}
		if err := store.Issues.Create(ctx, issue); err != nil {
			t.Fatalf("Create issue failed: %v", err)
		}
	}

	issues, err := store.Issues.List(ctx, IssueFilter{}, NewestFirst, Page{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(issues) != 3 || issues[0].Title != "third" || issues[2].Title != "first" {
		t.Fatalf("unexpected order: %+v", issues)
	}

	paged, _ := store.Issues.List(ctx, IssueFilter{}, NewestFirst, Page{Offset: 1, Limit: 1})
	if len(paged) != 1 || paged[0].Title != "second" {
		t.Errorf("unexpected page: %+v", paged)
	}

	filtered, _ := store.Issues.List(ctx, IssueFilter{Locality: &locality.ID}, NewestFirst, Page{})
	if len(filtered) != 1 || filtered[0].Title != "second" {
		t.Errorf("unexpected locality filter result: %+v", filtered)
	}

	count, _ := store.Issues.Count(ctx, IssueFilter{Locality: &locality.ID})
	if count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}
}

func TestMemoryIncrementUpvotesConcurrent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	issue := &models.Issue{Title: "pothole", Status: models.Reported}
	if err := store.Issues.Create(ctx, issue); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Issues.IncrementUpvotes(ctx, issue.ID); err != nil {
				t.Errorf("IncrementUpvotes failed: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := store.Issues.FindByID(ctx, issue.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got.Upvotes != n {
		t.Errorf("expected %d upvotes, got %d", n, got.Upvotes)
	}
}

func TestMemoryLocalitiesWithCoordinates(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.Localities.Create(ctx, &models.Locality{Name: "NoCoords"})
	_ = store.Localities.Create(ctx, &models.Locality{Name: "HalfCoords", Latitude: float(1)})
	_ = store.Localities.Create(ctx, &models.Locality{Name: "Central", Latitude: float(10), Longitude: float(10)})

	localities, err := store.Localities.WithCoordinates(ctx)
	if err != nil {
		t.Fatalf("WithCoordinates failed: %v", err)
	}
	if len(localities) != 1 || localities[0].Name != "Central" {
		t.Errorf("unexpected localities: %+v", localities)
	}
}

func TestMemoryIssueTypeKeyUnique(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.IssueTypes.Create(ctx, &models.IssueType{Key: "pothole", Label: "Pothole"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.IssueTypes.Create(ctx, &models.IssueType{Key: "pothole", Label: "Again"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestWindowBounds(t *testing.T) {
	items := []int{1, 2, 3}

	tests := []struct {
		name string
		page Page
		want int
	}{
		{"all", Page{}, 3},
		{"limited", Page{Limit: 2}, 2},
		{"offset", Page{Offset: 2, Limit: 5}, 1},
		{"past the end", Page{Offset: 3}, 0},
		{"negative offset", Page{Offset: -9223372036854775808, Limit: 2}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := window(items, tt.page); len(got) != tt.want {
				t.Errorf("window() returned %d items, want %d", len(got), tt.want)
			}
		})
	}
}
