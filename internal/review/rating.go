package review

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	ratingKeyFmt = "rating:%d"
	ratingTTL    = 5 * time.Minute
)

// TitleRating returns the rounded average review score for a title, or nil
// when the title has no reviews. A redis client, when provided, caches the
// value; cache misses or redis failures fall through to the database.
func TitleRating(db *gorm.DB, rdb *redis.Client, titleID uint) (*int, error) {
	key := fmt.Sprintf(ratingKeyFmt, titleID)
	if rdb != nil {
		if val, err := rdb.Get(context.Background(), key).Result(); err == nil {
			if val == "" {
				return nil, nil
			}
			if n, err := strconv.Atoi(val); err == nil {
				return &n, nil
			}
		}
	}

	var avg sql.NullFloat64
	row := db.Model(&Review{}).Where("title_id = ?", titleID).Select("AVG(score)").Row()
	if err := row.Scan(&avg); err != nil {
		return nil, err
	}
	if !avg.Valid {
		if rdb != nil {
			_ = rdb.Set(context.Background(), key, "", ratingTTL).Err()
		}
		return nil, nil
	}
	rating := int(math.Round(avg.Float64))
	if rdb != nil {
		_ = rdb.Set(context.Background(), key, strconv.Itoa(rating), ratingTTL).Err()
	}
	return &rating, nil
}

// InvalidateRating drops the cached rating after a review write.
func InvalidateRating(rdb *redis.Client, titleID uint) {
	if rdb == nil {
		return
	}
	_ = rdb.Del(context.Background(), fmt.Sprintf(ratingKeyFmt, titleID)).Err()
}
