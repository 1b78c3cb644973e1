package services

import (
	"context"
	"math"
	"net/http"
	"testing"

	"civiclens-be/models"
	"civiclens-be/repository"
)

func setupCatalogService(policy PromotionPolicy) (*CatalogService, *repository.Store) {
	store := repository.NewMemoryStore()
	return NewCatalogService(store, policy), store
}

func TestCreateIssueType(t *testing.T) {
	svc, _ := setupCatalogService(NoPromotion{})
	ctx := context.Background()

	created, err := svc.CreateIssueType(ctx, IssueTypeInput{Key: "  Pothole ", Label: "Pothole"})
	if err != nil {
		t.Fatalf("CreateIssueType failed: %v", err)
	}
	if created.Key != "pothole" {
		t.Errorf("expected normalized key, got %q", created.Key)
	}

	_, err = svc.CreateIssueType(ctx, IssueTypeInput{Key: "POTHOLE", Label: "Again"})
	expectStatus(t, err, http.StatusBadRequest)

	_, err = svc.CreateIssueType(ctx, IssueTypeInput{Key: "x"})
	expectStatus(t, err, http.StatusBadRequest)

	types, total, err := svc.ListIssueTypes(ctx, repository.Page{})
	if err != nil {
		t.Fatalf("ListIssueTypes failed: %v", err)
	}
	if total != 1 || len(types) != 1 {
		t.Errorf("expected 1 issue type, got %d (total %d)", len(types), total)
	}
}

func TestCreateLocality(t *testing.T) {
	svc, _ := setupCatalogService(NoPromotion{})
	ctx := context.Background()

	tests := []struct {
		name    string
		input   LocalityInput
		wantErr bool
	}{
		{"name only", LocalityInput{Name: "Old Town"}, false},
		{"with coordinates", LocalityInput{Name: "Central", Latitude: ptr(18.52), Longitude: ptr(73.85)}, false},
		{"missing name", LocalityInput{Name: "  "}, true},
		{"latitude only", LocalityInput{Name: "A", Latitude: ptr(1)}, true},
		{"latitude out of range", LocalityInput{Name: "A", Latitude: ptr(91), Longitude: ptr(0)}, true},
		{"longitude out of range", LocalityInput{Name: "A", Latitude: ptr(0), Longitude: ptr(-181)}, true},
		{"not a number", LocalityInput{Name: "A", Latitude: ptr(math.NaN()), Longitude: ptr(0)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateLocality(ctx, tt.input)
			if tt.wantErr {
				expectStatus(t, err, http.StatusBadRequest)
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	localities, total, err := svc.ListLocalities(ctx, repository.Page{Limit: 1})
	if err != nil {
		t.Fatalf("ListLocalities failed: %v", err)
	}
	if total != 2 || len(localities) != 1 {
		t.Errorf("expected 1 of 2 localities, got %d of %d", len(localities), total)
	}
}

func TestCreateUser(t *testing.T) {
	svc, store := setupCatalogService(NewAllowlistPromotion([]string{"boss@city.gov"}))
	ctx := context.Background()

	citizen, err := svc.CreateUser(ctx, UserInput{Name: "Asha", Email: "Asha@Example.com"})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if citizen.Role != models.RoleCitizen || citizen.Email != "asha@example.com" {
		t.Errorf("unexpected user: %+v", citizen)
	}

	_, err = svc.CreateUser(ctx, UserInput{Name: "Asha 2", Email: "asha@example.com"})
	expectStatus(t, err, http.StatusBadRequest)

	_, err = svc.CreateUser(ctx, UserInput{Name: "Eve", Email: "eve@example.com", Role: "admin"})
	expectStatus(t, err, http.StatusForbidden)

	admin, err := svc.CreateUser(ctx, UserInput{Name: "Boss", Email: "boss@city.gov", Role: "admin", Password: "secret1"})
	if err != nil {
		t.Fatalf("CreateUser admin failed: %v", err)
	}
	if admin.Role != models.RoleAdmin {
		t.Errorf("expected admin, got %s", admin.Role)
	}
	stored, _ := store.Users.FindByID(ctx, admin.ID)
	if stored.Password == "secret1" || !stored.ComparePassword("secret1") {
		t.Error("password should be stored hashed")
	}

	_, err = svc.CreateUser(ctx, UserInput{Name: "Short", Email: "s@example.com", Password: "123"})
	expectStatus(t, err, http.StatusBadRequest)

	_, err = svc.CreateUser(ctx, UserInput{Name: "Odd", Email: "o@example.com", Role: "mayor"})
	expectStatus(t, err, http.StatusBadRequest)

	users, total, err := svc.ListUsers(ctx, repository.Page{})
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if total != 2 || len(users) != 2 {
		t.Errorf("expected 2 users, got %d (total %d)", len(users), total)
	}
}
