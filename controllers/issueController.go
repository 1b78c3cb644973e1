package controllers

import (
	"net/http"
	"strings"

	"civiclens-be/middlewares"
	"civiclens-be/repository"
	"civiclens-be/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type IssueController struct {
	issues *services.IssueService
}

func NewIssueController(issues *services.IssueService) *IssueController {
	return &IssueController{issues: issues}
}

type createIssueRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	IssueType   string `json:"issueType"`
	PhotoURL    string `json:"photoUrl"`
	ReportedBy  string `json:"reportedBy"`
}

// List handles GET /issues with optional status, locality and issueType
// filters.
func (h *IssueController) List(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var filter repository.IssueFilter
	if raw := c.Query("status"); raw != "" {
		status, err := services.ParseStatus(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("locality"); raw != "" {
		id, err := services.ParseID(raw, "locality")
		if err != nil {
			respondError(c, err)
			return
		}
		filter.Locality = &id
	}
	if raw := c.Query("issueType"); raw != "" {
		id, err := services.ParseID(raw, "issue type")
		if err != nil {
			respondError(c, err)
			return
		}
		filter.IssueType = &id
	}

	issues, total, err := h.issues.List(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	setTotal(c, total)
	c.JSON(http.StatusOK, issues)
}

// Create handles POST /issues. A bearer credential, when present, names the
// reporter; otherwise the body's reportedBy is used.
func (h *IssueController) Create(c *gin.Context) {
	var req createIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.CreateIssueInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Category:    req.Category,
		IssueType:   req.IssueType,
		PhotoURL:    req.PhotoURL,
	}

	if user, ok := middlewares.CurrentUser(c); ok {
		id := user.ID
		input.ReportedBy = &id
	} else if raw := strings.TrimSpace(req.ReportedBy); raw != "" {
		id, err := services.ParseID(raw, "user")
		if err != nil {
			respondError(c, err)
			return
		}
		input.ReportedBy = &id
	}

	issue, err := h.issues.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, issue)
}

// Get handles GET /issues/:id.
func (h *IssueController) Get(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}
	issue, err := h.issues.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// UpdateStatus handles PATCH /issues/:id/status.
func (h *IssueController) UpdateStatus(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issue, err := h.issues.ChangeStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// Upvote handles POST /issues/:id/upvote.
func (h *IssueController) Upvote(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}
	issue, err := h.issues.Upvote(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// Recent handles GET /issues/recent.
func (h *IssueController) Recent(c *gin.Context) {
	markers, err := h.issues.Recent(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, markers)
}

// Analytics handles GET /issues/analytics.
func (h *IssueController) Analytics(c *gin.Context) {
	analytics, err := h.issues.Analytics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

func issueID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := services.ParseID(c.Param("id"), "issue")
	if err != nil {
		respondError(c, err)
		return primitive.NilObjectID, false
	}
	return id, true
}
