package controllers

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"civiclens-be/repository"
	"civiclens-be/services"

	"github.com/gin-gonic/gin"
)

const totalCountHeader = "X-Total-Count"

// respondError writes a DomainError as its status and message. Anything
// else is logged and reported as a generic 500.
func respondError(c *gin.Context, err error) {
	var de *services.DomainError
	if errors.As(err, &de) {
		if de.Status >= http.StatusInternalServerError {
			slog.Error("request failed", "path", c.FullPath(), "code", de.Code, "error", err)
		}
		c.JSON(de.Status, gin.H{"error": de.Message})
		return
	}
	slog.Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
}

// pageFromQuery reads ?page=&limit=. Without a limit the whole collection
// is returned; page is 1-based.
func pageFromQuery(c *gin.Context) (repository.Page, error) {
	var page repository.Page

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 1 {
			return page, errors.New("limit must be a positive integer")
		}
		page.Limit = limit
	}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			return page, errors.New("page must be a positive integer")
		}
		if page.Limit > 0 {
			if n-1 > math.MaxInt64/page.Limit {
				return page, errors.New("page is out of range")
			}
			page.Offset = (n - 1) * page.Limit
		}
	}
	return page, nil
}

func setTotal(c *gin.Context, total int64) {
	c.Header(totalCountHeader, strconv.FormatInt(total, 10))
}
