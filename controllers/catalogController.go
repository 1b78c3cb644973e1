package controllers

import (
	"net/http"

	"civiclens-be/services"

	"github.com/gin-gonic/gin"
)

// CatalogController serves issue types and localities.
type CatalogController struct {
	catalog *services.CatalogService
}

func NewCatalogController(catalog *services.CatalogService) *CatalogController {
	return &CatalogController{catalog: catalog}
}

func (h *CatalogController) ListIssueTypes(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	types, total, err := h.catalog.ListIssueTypes(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	setTotal(c, total)
	c.JSON(http.StatusOK, types)
}

func (h *CatalogController) CreateIssueType(c *gin.Context) {
	var req struct {
		Key         string `json:"key"`
		Label       string `json:"label"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.catalog.CreateIssueType(c.Request.Context(), services.IssueTypeInput{
		Key:         req.Key,
		Label:       req.Label,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *CatalogController) ListLocalities(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	localities, total, err := h.catalog.ListLocalities(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	setTotal(c, total)
	c.JSON(http.StatusOK, localities)
}

type localityRequest struct {
	Name      string   `json:"name"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	Country   string   `json:"country"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
}

// CreateLocality accepts coordinates as latitude/longitude or lat/lng.
func (h *CatalogController) CreateLocality(c *gin.Context) {
	var req localityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Latitude == nil {
		req.Latitude = req.Lat
	}
	if req.Longitude == nil {
		req.Longitude = req.Lng
	}

	created, err := h.catalog.CreateLocality(c.Request.Context(), services.LocalityInput{
		Name:      req.Name,
		City:      req.City,
		State:     req.State,
		Country:   req.Country,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
