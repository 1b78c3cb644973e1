package services

import (
	"context"
	"fmt"
	"strings"

	"civiclens-be/models"
)

// PromotionPolicy decides whether an account may become an admin when it
// asks to. It is consulted on registration and on federated login.
type PromotionPolicy interface {
	AllowAdmin(ctx context.Context, user *models.User) bool
}

// Promotion policy modes accepted by NewPromotionPolicy.
const (
	PromotionOpen      = "open"
	PromotionAllowlist = "allowlist"
	PromotionNever     = "never"
)

// OpenPromotion grants admin to anyone who asks.
type OpenPromotion struct{}

func (OpenPromotion) AllowAdmin(context.Context, *models.User) bool { return true }

// NoPromotion never grants admin.
type NoPromotion struct{}

func (NoPromotion) AllowAdmin(context.Context, *models.User) bool { return false }

// AllowlistPromotion grants admin only to listed email addresses.
type AllowlistPromotion struct {
	emails map[string]struct{}
}

func NewAllowlistPromotion(emails []string) *AllowlistPromotion {
	p := &AllowlistPromotion{emails: make(map[string]struct{}, len(emails))}
	for _, email := range emails {
		if email = models.NormalizeEmail(email); email != "" {
			p.emails[email] = struct{}{}
		}
	}
	return p
}

func (p *AllowlistPromotion) AllowAdmin(_ context.Context, user *models.User) bool {
	_, ok := p.emails[models.NormalizeEmail(user.Email)]
	return ok
}

// NewPromotionPolicy builds a policy from its configured mode.
func NewPromotionPolicy(mode string, adminEmails []string) (PromotionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case PromotionOpen:
		return OpenPromotion{}, nil
	case PromotionNever:
		return NoPromotion{}, nil
	case PromotionAllowlist, "":
		return NewAllowlistPromotion(adminEmails), nil
	}
	return nil, fmt.Errorf("unknown admin promotion mode %q", mode)
}
