package api

import (
	"net/http"
	"strconv"

	"go-catalog/internal/auth"
	"go-catalog/internal/db"
	"go-catalog/internal/permissions"
	"go-catalog/internal/review"

	"github.com/gin-gonic/gin"
)

func serializeComment(cm *review.Comment) gin.H {
	return gin.H{
		"id":       cm.ID,
		"text":     cm.Text,
		"author":   cm.Author.Username,
		"pub_date": cm.PubDate,
	}
}

// fetchFeedback resolves the nested title/review pair; a review id that
// does not belong to the title is a 404, not someone else's review.
func fetchFeedback(c *gin.Context) (*review.Review, bool) {
	t, ok := fetchTitle(c)
	if !ok {
		return nil, false
	}
	return fetchReview(c, t.ID)
}

func fetchComment(c *gin.Context, reviewID uint) (*review.Comment, bool) {
	id, err := strconv.ParseUint(c.Param("comment_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, errorBody("Comment not found"))
		return nil, false
	}
	var cm review.Comment
	if err := db.DB.Preload("Author").
		Where("id = ? AND review_id = ?", uint(id), reviewID).First(&cm).Error; err != nil {
		c.JSON(http.StatusNotFound, errorBody("Comment not found"))
		return nil, false
	}
	return &cm, true
}

// GET /titles/:title_id/reviews/:review_id/comments
func ListCommentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := fetchFeedback(c)
		if !ok {
			return
		}
		q := db.DB.Model(&review.Comment{}).Where("review_id = ?", r.ID)
		var count int64
		if err := q.Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("List error"))
			return
		}
		offset, limit := pagination(c)
		var comments []review.Comment
		if err := q.Preload("Author").Order("pub_date DESC").Offset(offset).Limit(limit).Find(&comments).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("List error"))
			return
		}
		results := make([]gin.H, 0, len(comments))
		for i := range comments {
			results = append(results, serializeComment(&comments[i]))
		}
		c.JSON(http.StatusOK, pagedResponse(count, results))
	}
}

type CommentWriteRequest struct {
	Text *string `json:"text"`
}

// POST /titles/:title_id/reviews/:review_id/comments
func CreateCommentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := fetchFeedback(c)
		if !ok {
			return
		}
		actor := auth.Actor(c)
		var req CommentWriteRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil || *req.Text == "" {
			c.JSON(http.StatusBadRequest, errorBody("Missing comment text"))
			return
		}
		cm := review.Comment{
			Text:     *req.Text,
			AuthorID: actor.ID,
			ReviewID: r.ID,
		}
		if err := db.DB.Create(&cm).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Create error"))
			return
		}
		cm.Author = *actor
		c.JSON(http.StatusCreated, serializeComment(&cm))
	}
}

// GET /titles/:title_id/reviews/:review_id/comments/:comment_id
func GetCommentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := fetchFeedback(c)
		if !ok {
			return
		}
		cm, ok := fetchComment(c, r.ID)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, serializeComment(cm))
	}
}

// PATCH /titles/:title_id/reviews/:review_id/comments/:comment_id
func UpdateCommentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := fetchFeedback(c)
		if !ok {
			return
		}
		cm, ok := fetchComment(c, r.ID)
		if !ok {
			return
		}
		if !requireObject(c, permissions.Feedback, cm) {
			return
		}
		var req CommentWriteRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil || *req.Text == "" {
			c.JSON(http.StatusBadRequest, errorBody("Missing comment text"))
			return
		}
		cm.Text = *req.Text
		if err := db.DB.Save(cm).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Update error"))
			return
		}
		c.JSON(http.StatusOK, serializeComment(cm))
	}
}

// DELETE /titles/:title_id/reviews/:review_id/comments/:comment_id
func DeleteCommentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := fetchFeedback(c)
		if !ok {
			return
		}
		cm, ok := fetchComment(c, r.ID)
		if !ok {
			return
		}
		if !requireObject(c, permissions.Feedback, cm) {
			return
		}
		if err := db.DB.Delete(cm).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Delete error"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
	}
}
