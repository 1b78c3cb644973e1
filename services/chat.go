package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"civiclens-be/models"
	"civiclens-be/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	localityIssueLimit = 5
	globalIssueLimit   = 3

	// RateLimitedReply is returned with success status when the provider
	// throttles us.
	RateLimitedReply = "I'm getting a lot of questions right now. Please try again in a minute."
)

// ChatService answers questions about a locality using its recent issues
// as context. It keeps no conversation state.
type ChatService struct {
	localities repository.LocalityRepository
	issues     repository.IssueRepository
	generator  TextGenerator
	timeout    time.Duration
}

// NewChatService builds the bridge. A nil generator means the provider is
// not configured and every question fails with a configuration error.
func NewChatService(localities repository.LocalityRepository, issues repository.IssueRepository, generator TextGenerator, timeout time.Duration) *ChatService {
	return &ChatService{
		localities: localities,
		issues:     issues,
		generator:  generator,
		timeout:    timeout,
	}
}

// Ask builds the prompt for message and returns the provider's reply
// verbatim.
func (s *ChatService) Ask(ctx context.Context, message, locality string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", validationError("Message is required")
	}
	if s.generator == nil {
		return "", internalError("Chatbot is not configured: missing API key", nil)
	}

	loc, err := s.findLocality(ctx, strings.TrimSpace(locality))
	if err != nil {
		return "", internalError("Failed to load locality", err)
	}

	filter := repository.IssueFilter{}
	limit := int64(globalIssueLimit)
	if loc != nil {
		filter.Locality = &loc.ID
		limit = localityIssueLimit
	}
	issues, err := s.issues.List(ctx, filter, repository.NewestFirst, repository.Page{Limit: limit})
	if err != nil {
		return "", internalError("Failed to load issues", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.generator.Generate(ctx, BuildPrompt(loc, issues)+"\n\nUser question: "+message)
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			return RateLimitedReply, nil
		}
		slog.Error("chatbot provider call failed", "error", err)
		return "", upstreamError("Chatbot service error", err)
	}
	return reply, nil
}

// findLocality matches by exact name, then by id if the input is one.
func (s *ChatService) findLocality(ctx context.Context, ref string) (*models.Locality, error) {
	if ref == "" {
		return nil, nil
	}

	loc, err := s.localities.FindByName(ctx, ref)
	if err == nil {
		return loc, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	oid, err := primitive.ObjectIDFromHex(ref)
	if err != nil {
		return nil, nil
	}
	loc, err = s.localities.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return loc, err
}

// BuildPrompt renders the fixed system prompt with locality metadata and a
// numbered digest of issues.
func BuildPrompt(loc *models.Locality, issues []models.Issue) string {
	var b strings.Builder
	b.WriteString("You are CivicLens Assistant, a helpful assistant for a civic issue reporting platform. ")
	b.WriteString("Answer questions about local civic problems using the context below. ")
	b.WriteString("If the context does not contain the answer, say so and suggest reporting the issue. ")
	b.WriteString("Keep answers short and friendly.\n\n")

	if loc != nil {
		fmt.Fprintf(&b, "Locality: %s\n", loc.Name)
		var place []string
		for _, part := range []string{loc.City, loc.State, loc.Country} {
			if part != "" {
				place = append(place, part)
			}
		}
		if len(place) > 0 {
			fmt.Fprintf(&b, "Area: %s\n", strings.Join(place, ", "))
		}
		if loc.HasCoordinates() {
			fmt.Fprintf(&b, "Coordinates: %.5f, %.5f\n", *loc.Latitude, *loc.Longitude)
		}
	} else {
		b.WriteString("Locality: not specified\n")
	}

	b.WriteString("\nRecent issues:\n")
	if len(issues) == 0 {
		b.WriteString("No recent issues found.\n")
	}
	for i, issue := range issues {
		fmt.Fprintf(&b, "%d. [%s] %s - %s (Location: %s, Reported: %s)\n",
			i+1, issue.Status, issue.Title, issue.Description, issue.Location,
			issue.CreatedAt.Format("2006-01-02"))
	}
	return b.String()
}
