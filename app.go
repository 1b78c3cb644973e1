package main

import (
	"fmt"
	"log/slog"

	"civiclens-be/config"
	"civiclens-be/controllers"
	"civiclens-be/repository"
	"civiclens-be/routes"
	"civiclens-be/services"
	"civiclens-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// buildRouter assembles services and handlers from configuration. Google
// login and the chat assistant are optional and stay disabled without
// credentials.
func buildRouter(cfg *config.Config, store *repository.Store, redisClient *redis.Client) (*gin.Engine, error) {
	tokens, err := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}
	stateTokens, err := utils.NewTokenManager(cfg.SessionSecret, stateExpiry)
	if err != nil {
		return nil, fmt.Errorf("state codec: %w", err)
	}

	promotion, err := services.NewPromotionPolicy(cfg.AdminPromotion, cfg.AdminEmails)
	if err != nil {
		return nil, err
	}

	providers := map[string]services.FederatedProvider{}
	if cfg.GoogleEnabled() {
		providers["google"] = services.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
	} else {
		slog.Warn("google oauth not configured, federated login disabled")
	}

	var generator services.TextGenerator
	if cfg.GeminiAPIKey != "" {
		generator = services.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiAPIURL, cfg.GeminiModel)
	} else {
		slog.Warn("GEMINI_API_KEY not set, chatbot will report a configuration error")
	}

	authService := services.NewAuthService(store.Users, tokens, utils.NewStateCodec(stateTokens), promotion, providers)
	resolver := services.NewLocalityResolver(store.Localities)
	issueService := services.NewIssueService(store, resolver)
	catalogService := services.NewCatalogService(store, promotion)
	chatService := services.NewChatService(store.Localities, store.Issues, generator, cfg.ChatTimeout)

	return routes.Setup(routes.Deps{
		Auth:     controllers.NewAuthController(authService, cfg.FrontendURL),
		Issues:   controllers.NewIssueController(issueService),
		Catalog:  controllers.NewCatalogController(catalogService),
		Users:    controllers.NewUserController(catalogService),
		Chat:     controllers.NewChatController(chatService),
		Sessions: authService,

		FrontendURL:     cfg.FrontendURL,
		Redis:           redisClient,
		IssueRateLimit:  cfg.IssueRateLimit,
		IssueRateWindow: cfg.IssueRateWindow,
	}), nil
}
