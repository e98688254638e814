package api

import (
	"net/http"

	"go-catalog/internal/catalog"
	"go-catalog/internal/db"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SlugResourceRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func listByName(c *gin.Context, q *gorm.DB) (int64, *gorm.DB, bool) {
	if search := c.Query("search"); search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorBody("List error"))
		return 0, nil, false
	}
	offset, limit := pagination(c)
	return count, q.Order("name DESC").Offset(offset).Limit(limit), true
}

// GET /categories
func ListCategoriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, q, ok := listByName(c, db.DB.Model(&catalog.Category{}))
		if !ok {
			return
		}
		items := make([]catalog.Category, 0)
		if err := q.Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("List error"))
			return
		}
		c.JSON(http.StatusOK, pagedResponse(count, items))
	}
}

// POST /categories  [admin only]
func CreateCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SlugResourceRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Slug == "" {
			c.JSON(http.StatusBadRequest, errorBody("Missing name or slug"))
			return
		}
		var count int64
		if err := db.DB.Model(&catalog.Category{}).Where("name = ? OR slug = ?", req.Name, req.Slug).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("DB error"))
			return
		}
		if count > 0 {
			c.JSON(http.StatusBadRequest, errorBody("A category with this name or slug already exists"))
			return
		}
		cat := catalog.Category{Name: req.Name, Slug: req.Slug}
		if err := db.DB.Create(&cat).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Create error"))
			return
		}
		c.JSON(http.StatusCreated, cat)
	}
}

// DELETE /categories/:slug  [admin only]
func DeleteCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var cat catalog.Category
		if err := db.DB.Where("slug = ?", c.Param("slug")).First(&cat).Error; err != nil {
			c.JSON(http.StatusNotFound, errorBody("Category not found"))
			return
		}
		// Titles keep existing with a cleared category.
		if err := db.DB.Model(&catalog.Title{}).Where("category_id = ?", cat.ID).Update("category_id", nil).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Delete error"))
			return
		}
		if err := db.DB.Delete(&cat).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Delete error"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
	}
}

// GET /genres
func ListGenresHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, q, ok := listByName(c, db.DB.Model(&catalog.Genre{}))
		if !ok {
			return
		}
		items := make([]catalog.Genre, 0)
		if err := q.Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("List error"))
			return
		}
		c.JSON(http.StatusOK, pagedResponse(count, items))
	}
}

// POST /genres  [admin only]
func CreateGenreHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SlugResourceRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Slug == "" {
			c.JSON(http.StatusBadRequest, errorBody("Missing name or slug"))
			return
		}
		var count int64
		if err := db.DB.Model(&catalog.Genre{}).Where("name = ? OR slug = ?", req.Name, req.Slug).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("DB error"))
			return
		}
		if count > 0 {
			c.JSON(http.StatusBadRequest, errorBody("A genre with this name or slug already exists"))
			return
		}
		g := catalog.Genre{Name: req.Name, Slug: req.Slug}
		if err := db.DB.Create(&g).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Create error"))
			return
		}
		c.JSON(http.StatusCreated, g)
	}
}

// DELETE /genres/:slug  [admin only]
func DeleteGenreHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var g catalog.Genre
		if err := db.DB.Where("slug = ?", c.Param("slug")).First(&g).Error; err != nil {
			c.JSON(http.StatusNotFound, errorBody("Genre not found"))
			return
		}
		if err := db.DB.Exec("DELETE FROM title_genres WHERE genre_id = ?", g.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Delete error"))
			return
		}
		if err := db.DB.Delete(&g).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Delete error"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Genre deleted"})
	}
}
