package service

import (
	"testing"
	"time"

	"admoa/internal/domain"
	"admoa/internal/models"
	"admoa/internal/quota"
	"admoa/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newClientService(db *gorm.DB) *ClientService {
	return NewClientService(db, repository.NewClientRepository(db))
}

func TestCreateClientGrantsPlanQuota(t *testing.T) {
	db := setupDB(t)
	svc := newClientService(db)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	c, err := svc.CreateClient(CreateClientInput{
		Username:    "acme",
		Password:    "secret",
		CompanyName: "Acme Cafe",
		Plan:        domain.Plan3,
		StartDate:   start,
	})
	require.NoError(t, err)

	ledger, err := quota.FromJSON(c.Quota)
	require.NoError(t, err)
	assert.Equal(t, quota.Allowance{Total: 300, Remaining: 300}, ledger.Get(domain.TaskFollower))
	assert.Equal(t, quota.Allowance{Total: 30, Remaining: 30}, ledger.Get(domain.TaskBlog))
	require.NotNil(t, c.ContractEndDate)
	assert.Equal(t, start.AddDate(0, 3, 0), *c.ContractEndDate)
	assert.Equal(t, ledger.SumRemaining(), c.RemainingQuota)
}

func TestCreateClientManualPlanUsesOverride(t *testing.T) {
	db := setupDB(t)
	svc := newClientService(db)

	manual := quota.Map{domain.TaskBlog: {Total: 7, Remaining: 7}}
	c, err := svc.CreateClient(CreateClientInput{
		Username: "bespoke",
		Password: "secret",
		Plan:     domain.Plan1,
		Quota:    manual,
	})
	require.NoError(t, err)

	ledger, err := quota.FromJSON(c.Quota)
	require.NoError(t, err)
	assert.Equal(t, manual, ledger)
	assert.Equal(t, 7, c.RemainingQuota)
}

func TestCreateClientDuplicateUsername(t *testing.T) {
	db := setupDB(t)
	svc := newClientService(db)

	_, err := svc.CreateClient(CreateClientInput{Username: "dup", Password: "x", Plan: domain.Plan1})
	require.NoError(t, err)
	_, err = svc.CreateClient(CreateClientInput{Username: "dup", Password: "x", Plan: domain.Plan1})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestRenewPlanMergesAndExtends(t *testing.T) {
	db := setupDB(t)
	svc := newClientService(db)

	// end date in the future: renewal extends from it, not from today
	futureEnd := time.Now().AddDate(0, 2, 0).Truncate(time.Second)
	ledger := quota.Map{domain.TaskBlog: {Total: 10, Remaining: 4}}
	data, err := ledger.ToJSON()
	require.NoError(t, err)
	c := &models.Client{
		Username: "renewal", Role: domain.RoleClient, IsActive: true,
		Quota: data, RemainingQuota: 4, ContractEndDate: &futureEnd,
	}
	require.NoError(t, db.Create(c).Error)

	got, err := svc.RenewPlan(c.ID, domain.Plan3)
	require.NoError(t, err)

	merged, err := quota.FromJSON(got.Quota)
	require.NoError(t, err)
	assert.Equal(t, quota.Allowance{Total: 40, Remaining: 34}, merged.Get(domain.TaskBlog))

	require.NotNil(t, got.ContractEndDate)
	want := futureEnd.AddDate(0, 3, 0)
	assert.WithinDuration(t, want, *got.ContractEndDate, time.Second)
}

func TestUpdateClientManualQuotaTakenVerbatim(t *testing.T) {
	db := setupDB(t)
	svc := newClientService(db)

	c, err := svc.CreateClient(CreateClientInput{Username: "manual", Password: "x", Plan: domain.Plan1})
	require.NoError(t, err)

	// remaining above total is accepted as-is; only debit/credit police the range
	odd := quota.Map{domain.TaskLike: {Total: 10, Remaining: 25}}
	got, err := svc.UpdateClient(c.ID, UpdateClientInput{Quota: odd})
	require.NoError(t, err)

	ledger, err := quota.FromJSON(got.Quota)
	require.NoError(t, err)
	assert.Equal(t, quota.Allowance{Total: 10, Remaining: 25}, ledger.Get(domain.TaskLike))
	assert.Equal(t, 25, got.RemainingQuota)
}

func TestDeleteClientCascadesOrders(t *testing.T) {
	db := setupDB(t)
	csvc := newClientService(db)
	osvc := newOrderService(db)

	c, err := csvc.CreateClient(CreateClientInput{Username: "cascade", Password: "x", Plan: domain.Plan3})
	require.NoError(t, err)
	_, err = osvc.Create(Actor{ID: c.ID, Role: domain.RoleClient}, c.ID, CreateOrderInput{TaskType: domain.TaskBlog})
	require.NoError(t, err)

	require.NoError(t, csvc.DeleteClient(c.ID))

	var n int64
	require.NoError(t, db.Model(&models.Order{}).Where("client_id = ?", c.ID).Count(&n).Error)
	assert.Zero(t, n)
	err = db.First(&models.Client{}, c.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
