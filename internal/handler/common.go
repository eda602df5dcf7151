package handler

import (
	"errors"
	"net/http"
	"strconv"

	"admoa/internal/middleware"
	"admoa/internal/models"
	"admoa/internal/quota"
	"admoa/internal/repository"
	"admoa/internal/review"
	"admoa/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{ID: middleware.GetClientID(c), Role: middleware.GetRole(c)}
}

func idParam(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || n == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(n), true
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// writeError maps domain errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, review.ErrTransitionForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, quota.ErrInsufficientQuota):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, review.ErrInvalidTransition),
		errors.Is(err, review.ErrMissingDraft),
		errors.Is(err, review.ErrMissingLink),
		errors.Is(err, review.ErrMissingRevisionRequest):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnknownTaskType),
		errors.Is(err, service.ErrBadRequestCount),
		errors.Is(err, service.ErrUnknownPlan),
		errors.Is(err, service.ErrUsernameExists),
		errors.Is(err, repository.ErrInsufficientPoints):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func logAudit(repo *repository.AuditLogRepository, c *gin.Context, clientID uint, action, resource string, resourceID uint) {
	if repo == nil {
		return
	}
	var cid *uint
	if clientID != 0 {
		cid = &clientID
	}
	_ = repo.Log(&models.AuditLog{
		ClientID:   cid,
		Action:     action,
		Resource:   resource,
		ResourceID: strconv.FormatUint(uint64(resourceID), 10),
		IP:         c.ClientIP(),
	})
}
