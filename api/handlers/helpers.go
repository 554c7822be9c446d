package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

func parseTimeRange(c *gin.Context) (time.Time, time.Time) {
	to := time.Now()
	from := to.Add(-24 * time.Hour)

	if fromStr := c.Query("from"); fromStr != "" {
		if parsed, err := time.Parse(time.RFC3339, fromStr); err == nil {
			from = parsed
		}
	}

	if toStr := c.Query("to"); toStr != "" {
		if parsed, err := time.Parse(time.RFC3339, toStr); err == nil {
			to = parsed
		}
	}

	// Relative ranges like "6h", "7d" override from
	if rangeStr := c.Query("range"); rangeStr != "" {
		from = to.Add(-parseDuration(rangeStr))
	}

	return from, to
}

func parseLimit(c *gin.Context, defaultLimit, maxLimit int) int {
	limit := defaultLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
			if maxLimit > 0 && limit > maxLimit {
				limit = maxLimit
			}
		}
	}
	return limit
}

func parseIntQuery(c *gin.Context, key string, defaultVal int) int {
	s := c.Query(key)
	if s == "" {
		return defaultVal
	}
	if parsed, err := strconv.Atoi(s); err == nil {
		return parsed
	}
	return defaultVal
}

func parseDuration(s string) time.Duration {
	if len(s) < 2 {
		return 24 * time.Hour
	}

	unit := s[len(s)-1]
	value, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return 24 * time.Hour
	}

	switch unit {
	case 'm':
		return time.Duration(value) * time.Minute
	case 'h':
		return time.Duration(value) * time.Hour
	case 'd':
		return time.Duration(value) * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}
