package routes

import (
	"civiclens-be/middlewares"
	"civiclens-be/models"

	"github.com/gin-gonic/gin"
)

const issueRateLimitPrefix = "issue_limit"

// IssueRoutes sets up the issue routes
func IssueRoutes(r *gin.Engine, d Deps) {
	issue := r.Group("/issues")
	{
		issue.GET("", d.Issues.List)
		issue.GET("/recent", d.Issues.Recent)
		issue.GET("/analytics", d.Issues.Analytics)
		issue.GET("/:id", d.Issues.Get)
		issue.POST("",
			middlewares.OptionalAuth(d.Sessions),
			middlewares.IssueRateLimiter(d.Redis, issueRateLimitPrefix, d.IssueRateLimit, d.IssueRateWindow),
			d.Issues.Create)
		issue.PATCH("/:id/status",
			middlewares.RequireAuth(d.Sessions),
			middlewares.RequireRole(models.RoleAdmin),
			d.Issues.UpdateStatus)
		issue.POST("/:id/upvote", d.Issues.Upvote)
	}
}

// CatalogRoutes sets up the issue type and locality routes
func CatalogRoutes(r *gin.Engine, d Deps) {
	types := r.Group("/issue-types")
	{
		types.GET("", d.Catalog.ListIssueTypes)
		types.POST("", d.Catalog.CreateIssueType)
	}
	localities := r.Group("/localities")
	{
		localities.GET("", d.Catalog.ListLocalities)
		localities.POST("", d.Catalog.CreateLocality)
	}
}
