package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emberwell/api/middleware"
	"github.com/emberwell/api/services"
	"github.com/emberwell/api/utils"
)

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(ctx.Param(name))
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseDateParam reads an optional YYYY-MM-DD value, defaulting to the
// server-local today. The caller's local date is authoritative for all
// calendar bookkeeping, so clients in other timezones should always send it.
func parseDateParam(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now(), nil
	}
	d, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, &services.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	return d, nil
}

// respondServiceError maps the service error taxonomy onto the uniform JSON
// envelope. Idempotency collisions surface as benign "already done" states.
func respondServiceError(ctx *gin.Context, err error, fallbackCode int, fallbackMsg string) {
	var ve *services.ValidationError
	switch {
	case errors.Is(err, services.ErrInvalidAward):
		utils.Error(ctx, http.StatusBadRequest, 40010, "award amount must be positive")
	case errors.Is(err, services.ErrAlreadyAwarded):
		utils.Error(ctx, http.StatusConflict, 40910, "already done today")
	case errors.Is(err, services.ErrAlreadyCompleted):
		utils.Error(ctx, http.StatusConflict, 40911, "challenge already completed")
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40410, "not found")
	case errors.As(err, &ve):
		utils.Error(ctx, http.StatusBadRequest, 40040, ve.Error())
	default:
		utils.Error(ctx, http.StatusInternalServerError, fallbackCode, fallbackMsg)
	}
}
