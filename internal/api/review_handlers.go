package api

import (
	"net/http"
	"strconv"

	"go-catalog/internal/auth"
	"go-catalog/internal/db"
	"go-catalog/internal/permissions"
	"go-catalog/internal/review"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func serializeReview(r *review.Review) gin.H {
	return gin.H{
		"id":       r.ID,
		"text":     r.Text,
		"author":   r.Author.Username,
		"score":    r.Score,
		"pub_date": r.PubDate,
	}
}

func fetchReview(c *gin.Context, titleID uint) (*review.Review, bool) {
	id, err := strconv.ParseUint(c.Param("review_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, errorBody("Review not found"))
		return nil, false
	}
	var r review.Review
	if err := db.DB.Preload("Author").
		Where("id = ? AND title_id = ?", uint(id), titleID).First(&r).Error; err != nil {
		c.JSON(http.StatusNotFound, errorBody("Review not found"))
		return nil, false
	}
	return &r, true
}

// GET /titles/:title_id/reviews
func ListReviewsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := fetchTitle(c)
		if !ok {
			return
		}
		q := db.DB.Model(&review.Review{}).Where("title_id = ?", t.ID)
		var count int64
		if err := q.Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("List error"))
			return
		}
		offset, limit := pagination(c)
		var reviews []review.Review
		if err := q.Preload("Author").Order("pub_date DESC").Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("List error"))
			return
		}
		results := make([]gin.H, 0, len(reviews))
		for i := range reviews {
			results = append(results, serializeReview(&reviews[i]))
		}
		c.JSON(http.StatusOK, pagedResponse(count, results))
	}
}

type ReviewWriteRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

// POST /titles/:title_id/reviews
func CreateReviewHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := fetchTitle(c)
		if !ok {
			return
		}
		actor := auth.Actor(c)
		var req ReviewWriteRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil || *req.Text == "" {
			c.JSON(http.StatusBadRequest, errorBody("Missing review text"))
			return
		}
		if req.Score == nil {
			c.JSON(http.StatusBadRequest, gin.H{"score": "Score is required"})
			return
		}
		if err := review.ValidateScore(*req.Score); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"score": err.Error()})
			return
		}
		var count int64
		if err := db.DB.Model(&review.Review{}).
			Where("title_id = ? AND author_id = ?", t.ID, actor.ID).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("DB error"))
			return
		}
		if count > 0 {
			c.JSON(http.StatusBadRequest, errorBody("You may not add more than one review per title"))
			return
		}
		r := review.Review{
			Text:     *req.Text,
			AuthorID: actor.ID,
			TitleID:  t.ID,
			Score:    *req.Score,
		}
		if err := db.DB.Create(&r).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Create error"))
			return
		}
		r.Author = *actor
		review.InvalidateRating(rdb, t.ID)
		c.JSON(http.StatusCreated, serializeReview(&r))
	}
}

// GET /titles/:title_id/reviews/:review_id
func GetReviewHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := fetchTitle(c)
		if !ok {
			return
		}
		r, ok := fetchReview(c, t.ID)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, serializeReview(r))
	}
}

// PATCH /titles/:title_id/reviews/:review_id
func UpdateReviewHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := fetchTitle(c)
		if !ok {
			return
		}
		r, ok := fetchReview(c, t.ID)
		if !ok {
			return
		}
		if !requireObject(c, permissions.Feedback, r) {
			return
		}
		var req ReviewWriteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorBody("Invalid request"))
			return
		}
		if req.Text != nil {
			if *req.Text == "" {
				c.JSON(http.StatusBadRequest, errorBody("Missing review text"))
				return
			}
			r.Text = *req.Text
		}
		if req.Score != nil {
			if err := review.ValidateScore(*req.Score); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"score": err.Error()})
				return
			}
			r.Score = *req.Score
		}
		if err := db.DB.Save(r).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Update error"))
			return
		}
		review.InvalidateRating(rdb, t.ID)
		c.JSON(http.StatusOK, serializeReview(r))
	}
}

// DELETE /titles/:title_id/reviews/:review_id
func DeleteReviewHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := fetchTitle(c)
		if !ok {
			return
		}
		r, ok := fetchReview(c, t.ID)
		if !ok {
			return
		}
		if !requireObject(c, permissions.Feedback, r) {
			return
		}
		// Comments cascade with their review.
		if err := db.DB.Where("review_id = ?", r.ID).Delete(&review.Comment{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Delete error"))
			return
		}
		if err := db.DB.Delete(r).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Delete error"))
			return
		}
		review.InvalidateRating(rdb, t.ID)
		c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
	}
}
