package handler

import (
	"net/http"
	"time"

	"admoa/internal/quota"
	"admoa/internal/repository"
	"admoa/internal/service"

	"github.com/gin-gonic/gin"
)

// ClientHandler is the admin surface for managing client accounts,
// contracts and points.
type ClientHandler struct {
	clientSvc  *service.ClientService
	clientRepo *repository.ClientRepository
	pointRepo  *repository.PointRepository
	auditRepo  *repository.AuditLogRepository
}

func NewClientHandler(
	clientSvc *service.ClientService,
	clientRepo *repository.ClientRepository,
	pointRepo *repository.PointRepository,
	auditRepo *repository.AuditLogRepository,
) *ClientHandler {
	return &ClientHandler{
		clientSvc:  clientSvc,
		clientRepo: clientRepo,
		pointRepo:  pointRepo,
		auditRepo:  auditRepo,
	}
}

func (h *ClientHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.clientRepo.ListClients(limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": list})
}

func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	client, err := h.clientRepo.GetByID(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) Create(c *gin.Context) {
	var req struct {
		Username    string     `json:"username" binding:"required"`
		Password    string     `json:"password" binding:"required,min=8"`
		CompanyName string     `json:"company_name"`
		Plan        string     `json:"plan" binding:"required"`
		StartDate   *time.Time `json:"contract_start_date"`
		Quota       quota.Map  `json:"quota"` // manual plan override
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := service.CreateClientInput{
		Username:    req.Username,
		Password:    req.Password,
		CompanyName: req.CompanyName,
		Plan:        req.Plan,
		Quota:       req.Quota,
	}
	if req.StartDate != nil {
		in.StartDate = *req.StartDate
	}
	client, err := h.clientSvc.CreateClient(in)
	if err != nil {
		writeError(c, err)
		return
	}
	logAudit(h.auditRepo, c, actorFrom(c).ID, "client.create", "client", client.ID)
	c.JSON(http.StatusCreated, client)
}

func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		CompanyName       *string    `json:"company_name"`
		IsActive          *bool      `json:"is_active"`
		ContractStartDate *time.Time `json:"contract_start_date"`
		ContractEndDate   *time.Time `json:"contract_end_date"`
		Quota             quota.Map  `json:"quota"`
		Password          *string    `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	client, err := h.clientSvc.UpdateClient(id, service.UpdateClientInput{
		CompanyName:       req.CompanyName,
		IsActive:          req.IsActive,
		ContractStartDate: req.ContractStartDate,
		ContractEndDate:   req.ContractEndDate,
		Quota:             req.Quota,
		Password:          req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	logAudit(h.auditRepo, c, actorFrom(c).ID, "client.update", "client", client.ID)
	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.clientSvc.DeleteClient(id); err != nil {
		writeError(c, err)
		return
	}
	logAudit(h.auditRepo, c, actorFrom(c).ID, "client.delete", "client", id)
	c.JSON(http.StatusOK, gin.H{"message": "client deleted"})
}

func (h *ClientHandler) Renew(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Plan string `json:"plan" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	client, err := h.clientSvc.RenewPlan(id, req.Plan)
	if err != nil {
		writeError(c, err)
		return
	}
	logAudit(h.auditRepo, c, actorFrom(c).ID, "client.renew", "client", client.ID)
	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) AdjustPoints(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Amount int    `json:"amount" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.pointRepo.Adjust(id, req.Amount, req.Reason); err != nil {
		writeError(c, err)
		return
	}
	client, err := h.clientRepo.GetByID(id)
	if err != nil {
		writeError(c, err)
		return
	}
	logAudit(h.auditRepo, c, actorFrom(c).ID, "client.points", "client", id)
	c.JSON(http.StatusOK, gin.H{"points": client.Points})
}
