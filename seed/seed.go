package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"civiclens-be/models"
	"civiclens-be/repository"
)

// DefaultIssueTypes is the taxonomy installed on a fresh database.
var DefaultIssueTypes = []models.IssueType{
	{Key: "pothole", Label: "Pothole", Description: "Damaged or broken road surface", Icon: "road"},
	{Key: "garbage", Label: "Garbage", Description: "Uncollected waste or illegal dumping", Icon: "trash"},
	{Key: "streetlight", Label: "Streetlight", Description: "Broken or missing street lighting", Icon: "lightbulb"},
	{Key: "water", Label: "Water Supply", Description: "Leaks, outages or contaminated supply", Icon: "droplet"},
	{Key: "drainage", Label: "Drainage", Description: "Blocked drains or waterlogging", Icon: "waves"},
	{Key: "other", Label: "Other", Description: "Anything else that needs attention", Icon: "flag"},
}

// IssueTypes inserts every default type whose key is missing. It returns
// how many were created.
func IssueTypes(ctx context.Context, repo repository.IssueTypeRepository) (int, error) {
	created := 0
	for _, def := range DefaultIssueTypes {
		_, err := repo.FindByKey(ctx, def.Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return created, fmt.Errorf("lookup issue type %s: %w", def.Key, err)
		}

		issueType := def
		if err := repo.Create(ctx, &issueType); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			return created, fmt.Errorf("create issue type %s: %w", def.Key, err)
		}
		created++
	}

	if created > 0 {
		slog.Info("seeded issue types", "created", created)
	}
	return created, nil
}
