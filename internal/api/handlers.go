package api

import (
	"net/http"
	"strconv"

	"go-catalog/internal/auth"
	"go-catalog/internal/permissions"

	"github.com/gin-gonic/gin"
)

// GET /health
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func errorBody(msg string) gin.H {
	return gin.H{"error": gin.H{"message": msg}}
}

func permissionRequest(c *gin.Context) permissions.Request {
	return permissions.Request{Method: c.Request.Method, Actor: auth.Actor(c)}
}

func denyStatus(r permissions.Request) int {
	// Anonymous actors are challenged, authenticated ones refused.
	if r.Actor == nil {
		return http.StatusUnauthorized
	}
	return http.StatusForbidden
}

// Require gates a route on the collection-level permission check. Object
// refinement happens inside handlers via requireObject once the object is
// loaded.
func Require(p permissions.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := permissionRequest(c)
		if ok, msg := p.Check(r); !ok {
			c.AbortWithStatusJSON(denyStatus(r), errorBody(msg))
			return
		}
		c.Next()
	}
}

func requireObject(c *gin.Context, p permissions.Permission, obj permissions.Owned) bool {
	r := permissionRequest(c)
	if ok, msg := p.CheckObject(r, obj); !ok {
		c.JSON(denyStatus(r), errorBody(msg))
		return false
	}
	return true
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func pagination(c *gin.Context) (offset, limit int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if size < 1 || size > maxPageSize {
		size = defaultPageSize
	}
	return (page - 1) * size, size
}

func pagedResponse(count int64, results interface{}) gin.H {
	return gin.H{"count": count, "results": results}
}
