package controllers

import (
	"net/http"

	"civiclens-be/services"

	"github.com/gin-gonic/gin"
)

// UserController exposes the user directory. The routes are not behind
// authentication.
type UserController struct {
	catalog *services.CatalogService
}

func NewUserController(catalog *services.CatalogService) *UserController {
	return &UserController{catalog: catalog}
}

func (h *UserController) List(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	users, total, err := h.catalog.ListUsers(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	setTotal(c, total)
	c.JSON(http.StatusOK, users)
}

func (h *UserController) Create(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.catalog.CreateUser(c.Request.Context(), services.UserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
