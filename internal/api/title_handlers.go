package api

import (
	"net/http"
	"strconv"
	"time"

	"go-catalog/internal/catalog"
	"go-catalog/internal/db"
	"go-catalog/internal/review"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func serializeTitle(t *catalog.Title, rating *int) gin.H {
	genres := make([]gin.H, 0, len(t.Genres))
	for _, g := range t.Genres {
		genres = append(genres, gin.H{"name": g.Name, "slug": g.Slug})
	}
	var cat interface{}
	if t.Category != nil {
		cat = gin.H{"name": t.Category.Name, "slug": t.Category.Slug}
	}
	var r interface{}
	if rating != nil {
		r = *rating
	}
	return gin.H{
		"id":          t.ID,
		"name":        t.Name,
		"year":        t.Year,
		"description": t.Description,
		"genre":       genres,
		"category":    cat,
		"rating":      r,
	}
}

func fetchTitle(c *gin.Context) (*catalog.Title, bool) {
	id, err := strconv.ParseUint(c.Param("title_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, errorBody("Title not found"))
		return nil, false
	}
	var t catalog.Title
	if err := db.DB.Preload("Category").Preload("Genres").First(&t, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, errorBody("Title not found"))
		return nil, false
	}
	return &t, true
}

// GET /titles
func ListTitlesHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.DB.Model(&catalog.Title{})
		if slug := c.Query("category"); slug != "" {
			q = q.Joins("JOIN categories ON categories.id = titles.category_id").
				Where("categories.slug = ?", slug)
		}
		if slug := c.Query("genre"); slug != "" {
			q = q.Joins("JOIN title_genres ON title_genres.title_id = titles.id").
				Joins("JOIN genres ON genres.id = title_genres.genre_id").
				Where("genres.slug = ?", slug)
		}
		if name := c.Query("name"); name != "" {
			q = q.Where("titles.name LIKE ?", "%"+name+"%")
		}
		if year := c.Query("year"); year != "" {
			q = q.Where("titles.year = ?", year)
		}
		var count int64
		if err := q.Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("List error"))
			return
		}
		offset, limit := pagination(c)
		var titles []catalog.Title
		if err := q.Preload("Category").Preload("Genres").
			Order("titles.year DESC").Offset(offset).Limit(limit).Find(&titles).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("List error"))
			return
		}
		results := make([]gin.H, 0, len(titles))
		for i := range titles {
			rating, err := review.TitleRating(db.DB, rdb, titles[i].ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, errorBody("List error"))
				return
			}
			results = append(results, serializeTitle(&titles[i], rating))
		}
		c.JSON(http.StatusOK, pagedResponse(count, results))
	}
}

type TitleWriteRequest struct {
	Name        *string   `json:"name"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Genre       *[]string `json:"genre"`
	Category    *string   `json:"category"`
}

func resolveCategory(c *gin.Context, slug string) (*catalog.Category, bool) {
	var cat catalog.Category
	if err := db.DB.Where("slug = ?", slug).First(&cat).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"category": "Unknown category slug"})
		return nil, false
	}
	return &cat, true
}

func resolveGenres(c *gin.Context, slugs []string) ([]catalog.Genre, bool) {
	genres := make([]catalog.Genre, 0, len(slugs))
	for _, slug := range slugs {
		var g catalog.Genre
		if err := db.DB.Where("slug = ?", slug).First(&g).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"genre": "Unknown genre slug"})
			return nil, false
		}
		genres = append(genres, g)
	}
	return genres, true
}

// POST /titles  [admin only]
func CreateTitleHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TitleWriteRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == nil || *req.Name == "" {
			c.JSON(http.StatusBadRequest, errorBody("Missing title name"))
			return
		}
		if req.Year != nil {
			if err := catalog.ValidateYear(*req.Year, time.Now()); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"year": err.Error()})
				return
			}
		}
		t := catalog.Title{Name: *req.Name, Year: req.Year}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.Category != nil && *req.Category != "" {
			cat, ok := resolveCategory(c, *req.Category)
			if !ok {
				return
			}
			t.CategoryID = &cat.ID
			t.Category = cat
		}
		if req.Genre != nil {
			genres, ok := resolveGenres(c, *req.Genre)
			if !ok {
				return
			}
			t.Genres = genres
		}
		if err := db.DB.Create(&t).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Create error"))
			return
		}
		c.JSON(http.StatusCreated, serializeTitle(&t, nil))
	}
}

// GET /titles/:title_id
func GetTitleHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := fetchTitle(c)
		if !ok {
			return
		}
		rating, err := review.TitleRating(db.DB, rdb, t.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("DB error"))
			return
		}
		c.JSON(http.StatusOK, serializeTitle(t, rating))
	}
}

// PATCH /titles/:title_id  [admin only]
func UpdateTitleHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := fetchTitle(c)
		if !ok {
			return
		}
		var req TitleWriteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorBody("Invalid request"))
			return
		}
		if req.Name != nil {
			if *req.Name == "" {
				c.JSON(http.StatusBadRequest, errorBody("Missing title name"))
				return
			}
			t.Name = *req.Name
		}
		if req.Year != nil {
			if err := catalog.ValidateYear(*req.Year, time.Now()); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"year": err.Error()})
				return
			}
			t.Year = req.Year
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.Category != nil && *req.Category != "" {
			cat, ok := resolveCategory(c, *req.Category)
			if !ok {
				return
			}
			t.CategoryID = &cat.ID
			t.Category = cat
		}
		if err := db.DB.Omit("Genres").Save(t).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Update error"))
			return
		}
		if req.Genre != nil {
			genres, ok := resolveGenres(c, *req.Genre)
			if !ok {
				return
			}
			if err := db.DB.Model(t).Association("Genres").Replace(genres); err != nil {
				c.JSON(http.StatusInternalServerError, errorBody("Update error"))
				return
			}
			t.Genres = genres
		}
		rating, err := review.TitleRating(db.DB, rdb, t.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("DB error"))
			return
		}
		c.JSON(http.StatusOK, serializeTitle(t, rating))
	}
}

// DELETE /titles/:title_id  [admin only]
func DeleteTitleHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := fetchTitle(c)
		if !ok {
			return
		}
		// Reviews and their comments cascade with the title.
		var reviewIDs []uint
		if err := db.DB.Model(&review.Review{}).Where("title_id = ?", t.ID).Pluck("id", &reviewIDs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Delete error"))
			return
		}
		if len(reviewIDs) > 0 {
			if err := db.DB.Where("review_id IN ?", reviewIDs).Delete(&review.Comment{}).Error; err != nil {
				c.JSON(http.StatusInternalServerError, errorBody("Delete error"))
				return
			}
			if err := db.DB.Where("title_id = ?", t.ID).Delete(&review.Review{}).Error; err != nil {
				c.JSON(http.StatusInternalServerError, errorBody("Delete error"))
				return
			}
		}
		if err := db.DB.Exec("DELETE FROM title_genres WHERE title_id = ?", t.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Delete error"))
			return
		}
		if err := db.DB.Delete(t).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Delete error"))
			return
		}
		review.InvalidateRating(rdb, t.ID)
		c.JSON(http.StatusOK, gin.H{"message": "Title deleted"})
	}
}
