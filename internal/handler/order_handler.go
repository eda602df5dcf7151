package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"admoa/internal/domain"
	"admoa/internal/repository"
	"admoa/internal/review"
	"admoa/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderSvc    *service.OrderService
	orderRepo   *repository.OrderRepository
	settingRepo *repository.SettingRepository
	auditRepo   *repository.AuditLogRepository
}

func NewOrderHandler(
	orderSvc *service.OrderService,
	orderRepo *repository.OrderRepository,
	settingRepo *repository.SettingRepository,
	auditRepo *repository.AuditLogRepository,
) *OrderHandler {
	return &OrderHandler{
		orderSvc:    orderSvc,
		orderRepo:   orderRepo,
		settingRepo: settingRepo,
		auditRepo:   auditRepo,
	}
}

func (h *OrderHandler) Create(c *gin.Context) {
	actor := actorFrom(c)
	var req struct {
		ClientID     uint     `json:"client_id"` // admin may order on behalf of a client
		TaskType     string   `json:"task_type" binding:"required"`
		Caption      string   `json:"caption"`
		ImageURLs    []string `json:"image_urls"`
		RequestCount int      `json:"request_count"`
		ReviewerName string   `json:"reviewer_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	clientID := actor.ID
	if actor.IsAdmin() && req.ClientID != 0 {
		clientID = req.ClientID
	}

	// minimum request counts live in settings; validated here, not in the core
	switch req.TaskType {
	case domain.TaskFollower:
		min := h.settingRepo.GetInt(domain.SettingMinFollowerCount, 50)
		if req.RequestCount < min {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("follower orders require at least %d units", min)})
			return
		}
	case domain.TaskLike:
		min := h.settingRepo.GetInt(domain.SettingMinLikeCount, 10)
		if req.RequestCount < min {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("like orders require at least %d units", min)})
			return
		}
	}

	order, err := h.orderSvc.Create(actor, clientID, service.CreateOrderInput{
		TaskType:     req.TaskType,
		Caption:      req.Caption,
		ImageURLs:    req.ImageURLs,
		RequestCount: req.RequestCount,
		ReviewerName: req.ReviewerName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) List(c *gin.Context) {
	actor := actorFrom(c)
	limit, offset := pagination(c)

	if !actor.IsAdmin() {
		list, err := h.orderRepo.ListByClient(actor.ID, limit, offset)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": list})
		return
	}

	var f repository.OrderFilter
	if id, ok := uintQuery(c, "client_id"); ok {
		f.ClientID = id
	}
	f.TaskType = c.Query("task_type")
	f.Status = c.Query("status")
	list, err := h.orderRepo.List(f, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orderRepo.GetByID(id)
	if err != nil {
		writeError(c, err)
		return
	}
	actor := actorFrom(c)
	if !actor.IsAdmin() && actor.ID != order.ClientID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// Patch applies field updates. A status in the body routes through the
// state machine; everything else is a plain field write.
func (h *OrderHandler) Patch(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status          *string  `json:"status"`
		Caption         *string  `json:"caption"`
		ImageURLs       []string `json:"image_urls"`
		CompletedLink   *string  `json:"completed_link"`
		CompletedLink2  *string  `json:"completed_link2"`
		ReviewerName    *string  `json:"reviewer_name"`
		DraftText       *string  `json:"draft_text"`
		RevisionRequest *string  `json:"revision_request"`
		RevisionText    *string  `json:"revision_text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor := actorFrom(c)

	if req.Status != nil {
		order, err := h.orderSvc.Transition(actor, id, *req.Status, review.Request{
			DraftText:       deref(req.DraftText),
			CompletedLink:   deref(req.CompletedLink),
			RevisionRequest: deref(req.RevisionRequest),
		})
		if err != nil {
			writeError(c, err)
			return
		}
		logAudit(h.auditRepo, c, actor.ID, "order.transition", "order", order.ID)
		c.JSON(http.StatusOK, order)
		return
	}

	order, err := h.orderSvc.Update(actor, id, service.UpdateOrderInput{
		Caption:         req.Caption,
		ImageURLs:       req.ImageURLs,
		CompletedLink:   req.CompletedLink,
		CompletedLink2:  req.CompletedLink2,
		ReviewerName:    req.ReviewerName,
		DraftText:       req.DraftText,
		RevisionRequest: req.RevisionRequest,
		RevisionText:    req.RevisionText,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	actor := actorFrom(c)
	if err := h.orderSvc.Delete(actor, id); err != nil {
		writeError(c, err)
		return
	}
	logAudit(h.auditRepo, c, actor.ID, "order.delete", "order", id)
	c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
}

func uintQuery(c *gin.Context, name string) (uint, bool) {
	v := c.Query(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
