package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wheelhub/internal/logger"
	"github.com/wheelhub/internal/service"
	"github.com/wheelhub/internal/slug"
)

const dateLayout = "2006-01-02"

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

func queryInt(c *gin.Context, key string) int {
	value, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return 0
	}
	return value
}

func queryBool(c *gin.Context, key string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && value
}

// parseDate 接受 2006-01-02 或 RFC3339 格式。
func parseDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, errors.New("empty date")
	}
	if t, err := time.Parse(dateLayout, trimmed); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, trimmed)
}

func formatOptionalTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// respondSlugError maps slug assignment failures to HTTP statuses.
// It reports false when err is not slug related.
func respondSlugError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, slug.ErrInvalidTitle):
		respondError(c, http.StatusBadRequest, "标题需要包含字母或数字")
	case errors.Is(err, service.ErrSlugConflict):
		respondError(c, http.StatusConflict, "链接标识冲突，请重试")
	case errors.Is(err, slug.ErrSlugExhausted):
		logger.Error(err, "slug candidates exhausted", nil)
		respondError(c, http.StatusConflict, "同名记录过多，请修改标题")
	default:
		return false
	}
	return true
}

func respondInternal(c *gin.Context, err error, message string) {
	logger.Error(err, message, map[string]interface{}{"path": c.FullPath()})
	respondError(c, http.StatusInternalServerError, message)
}
