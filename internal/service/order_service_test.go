package service

import (
	"fmt"
	"testing"
	"time"

	"admoa/internal/domain"
	"admoa/internal/models"
	"admoa/internal/quota"
	"admoa/internal/repository"
	"admoa/internal/review"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:ordersvc_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Client{}, &models.Order{}); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	return db
}

func seedClient(t *testing.T, db *gorm.DB, ledger quota.Map) *models.Client {
	t.Helper()
	data, err := ledger.ToJSON()
	require.NoError(t, err)
	c := &models.Client{
		Username:       fmt.Sprintf("client_%d", time.Now().UnixNano()),
		Role:           domain.RoleClient,
		IsActive:       true,
		Quota:          data,
		RemainingQuota: ledger.SumRemaining(),
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func newOrderService(db *gorm.DB) *OrderService {
	return NewOrderService(db, repository.NewClientRepository(db), repository.NewOrderRepository(db))
}

func clientLedger(t *testing.T, db *gorm.DB, id uint) quota.Map {
	t.Helper()
	var c models.Client
	require.NoError(t, db.First(&c, id).Error)
	m, err := quota.FromJSON(c.Quota)
	require.NoError(t, err)
	return m
}

func TestCreateDebitsQuota(t *testing.T) {
	db := setupDB(t)
	c := seedClient(t, db, quota.Map{domain.TaskBlog: {Total: 10, Remaining: 10}})
	svc := newOrderService(db)

	order, err := svc.Create(Actor{ID: c.ID, Role: domain.RoleClient}, c.ID, CreateOrderInput{
		TaskType: domain.TaskBlogReview,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, 1, order.RequestCount)

	ledger := clientLedger(t, db, c.ID)
	assert.Equal(t, quota.Allowance{Total: 10, Remaining: 9}, ledger.Get(domain.TaskBlog))
}

func TestCreateInsufficientQuotaIsAtomic(t *testing.T) {
	db := setupDB(t)
	c := seedClient(t, db, quota.Map{domain.TaskFollower: {Total: 500, Remaining: 3}})
	svc := newOrderService(db)

	_, err := svc.Create(Actor{ID: c.ID, Role: domain.RoleClient}, c.ID, CreateOrderInput{
		TaskType:     domain.TaskFollower,
		RequestCount: 5,
	})
	assert.ErrorIs(t, err, quota.ErrInsufficientQuota)

	var n int64
	require.NoError(t, db.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n, "no order row may exist after a failed debit")
	assert.Equal(t, 3, clientLedger(t, db, c.ID).Get(domain.TaskFollower).Remaining)
}

func TestQuotaConservationOverCreateDelete(t *testing.T) {
	db := setupDB(t)
	c := seedClient(t, db, quota.Map{domain.TaskFollower: {Total: 500, Remaining: 500}})
	svc := newOrderService(db)
	actor := Actor{ID: c.ID, Role: domain.RoleClient}

	order, err := svc.Create(actor, c.ID, CreateOrderInput{
		TaskType:     domain.TaskFollower,
		Caption:      "팔로워 갯수: 120\n인스타 아이디: @someone",
		RequestCount: 120,
	})
	require.NoError(t, err)
	assert.Equal(t, 380, clientLedger(t, db, c.ID).Get(domain.TaskFollower).Remaining)

	require.NoError(t, svc.Delete(actor, order.ID))
	assert.Equal(t, 500, clientLedger(t, db, c.ID).Get(domain.TaskFollower).Remaining)

	var cl models.Client
	require.NoError(t, db.First(&cl, c.ID).Error)
	assert.Equal(t, 500, cl.RemainingQuota)
}

func TestDeleteRestoresUnderMappedKey(t *testing.T) {
	db := setupDB(t)
	c := seedClient(t, db, quota.Map{domain.TaskReceipt: {Total: 30, Remaining: 30}})
	svc := newOrderService(db)
	actor := Actor{ID: c.ID, Role: domain.RoleClient}

	order, err := svc.Create(actor, c.ID, CreateOrderInput{TaskType: domain.TaskReceiptReview})
	require.NoError(t, err)
	assert.Equal(t, 29, clientLedger(t, db, c.ID).Get(domain.TaskReceipt).Remaining)

	require.NoError(t, svc.Delete(actor, order.ID))
	assert.Equal(t, 30, clientLedger(t, db, c.ID).Get(domain.TaskReceipt).Remaining)
}

func TestDeleteAfterWorkingDoesNotRestore(t *testing.T) {
	db := setupDB(t)
	c := seedClient(t, db, quota.Map{domain.TaskBlog: {Total: 10, Remaining: 10}})
	svc := newOrderService(db)
	admin := Actor{ID: 999, Role: domain.RoleAdmin}

	order, err := svc.Create(Actor{ID: c.ID, Role: domain.RoleClient}, c.ID, CreateOrderInput{TaskType: domain.TaskBlogReview})
	require.NoError(t, err)
	_, err = svc.Transition(admin, order.ID, domain.StatusWorking, review.Request{})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(admin, order.ID))
	assert.Equal(t, 9, clientLedger(t, db, c.ID).Get(domain.TaskBlog).Remaining,
		"working orders do not give quota back")
}

func TestDeleteLegacyRowParsesCaptionCount(t *testing.T) {
	db := setupDB(t)
	c := seedClient(t, db, quota.Map{domain.TaskFollower: {Total: 500, Remaining: 300}})
	svc := newOrderService(db)

	// legacy row: request_count never recorded, count only in the caption
	legacy := &models.Order{
		ClientID: c.ID,
		TaskType: domain.TaskFollower,
		Status:   domain.StatusPending,
		Caption:  "팔로워 갯수: 120",
	}
	require.NoError(t, db.Create(legacy).Error)
	require.NoError(t, db.Model(legacy).Update("request_count", 0).Error)

	require.NoError(t, svc.Delete(Actor{ID: c.ID, Role: domain.RoleClient}, legacy.ID))
	assert.Equal(t, 420, clientLedger(t, db, c.ID).Get(domain.TaskFollower).Remaining)
}

func TestRestoreCountFallbacks(t *testing.T) {
	assert.Equal(t, 7, restoreCount(&models.Order{RequestCount: 7}))
	assert.Equal(t, 55, restoreCount(&models.Order{TaskType: domain.TaskLike, Caption: "좋아요 갯수: 55"}))
	assert.Equal(t, 1, restoreCount(&models.Order{TaskType: domain.TaskLike, Caption: "좋아요 갯수: lots"}))
	assert.Equal(t, 1, restoreCount(&models.Order{TaskType: domain.TaskBlog, Caption: "whatever"}))
}

func TestLinkUniquenessLastWriterWins(t *testing.T) {
	db := setupDB(t)
	c := seedClient(t, db, quota.Map{domain.TaskBlog: {Total: 10, Remaining: 10}})
	svc := newOrderService(db)
	admin := Actor{ID: 999, Role: domain.RoleAdmin}
	client := Actor{ID: c.ID, Role: domain.RoleClient}

	a, err := svc.Create(client, c.ID, CreateOrderInput{TaskType: domain.TaskBlogReview})
	require.NoError(t, err)
	b, err := svc.Create(client, c.ID, CreateOrderInput{TaskType: domain.TaskBlogReview})
	require.NoError(t, err)

	link := "https://x/1"
	_, err = svc.Update(admin, a.ID, UpdateOrderInput{CompletedLink: &link})
	require.NoError(t, err)
	_, err = svc.Update(admin, b.ID, UpdateOrderInput{CompletedLink: &link})
	require.NoError(t, err)

	var rows []models.Order
	require.NoError(t, db.Where("completed_link = ?", link).Find(&rows).Error)
	require.Len(t, rows, 1, "a link string belongs to exactly one order")
	assert.Equal(t, b.ID, rows[0].ID)

	var orderA models.Order
	require.NoError(t, db.First(&orderA, a.ID).Error)
	assert.Nil(t, orderA.CompletedLink)
}

func TestLinkDedupCoversSecondarySlot(t *testing.T) {
	db := setupDB(t)
	c := seedClient(t, db, quota.Map{domain.TaskMyexpense: {Total: 10, Remaining: 10}})
	svc := newOrderService(db)
	admin := Actor{ID: 999, Role: domain.RoleAdmin}
	client := Actor{ID: c.ID, Role: domain.RoleClient}

	a, err := svc.Create(client, c.ID, CreateOrderInput{TaskType: domain.TaskMyexpense})
	require.NoError(t, err)
	b, err := svc.Create(client, c.ID, CreateOrderInput{TaskType: domain.TaskMyexpense})
	require.NoError(t, err)

	link := "https://x/expense"
	_, err = svc.Update(admin, a.ID, UpdateOrderInput{CompletedLink2: &link})
	require.NoError(t, err)
	// the same string written to the primary slot of another order strips it
	_, err = svc.Update(admin, b.ID, UpdateOrderInput{CompletedLink: &link})
	require.NoError(t, err)

	var orderA models.Order
	require.NoError(t, db.First(&orderA, a.ID).Error)
	assert.Nil(t, orderA.CompletedLink2)

	n, err := repository.NewOrderRepository(db).CountByLink(link)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestUpdateTrimsLinkBeforeDedup(t *testing.T) {
	db := setupDB(t)
	c := seedClient(t, db, quota.Map{domain.TaskBlog: {Total: 10, Remaining: 10}})
	svc := newOrderService(db)
	admin := Actor{ID: 999, Role: domain.RoleAdmin}
	client := Actor{ID: c.ID, Role: domain.RoleClient}

	a, err := svc.Create(client, c.ID, CreateOrderInput{TaskType: domain.TaskBlogReview})
	require.NoError(t, err)

	padded := "  https://x/1  "
	updated, err := svc.Update(admin, a.ID, UpdateOrderInput{CompletedLink: &padded})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedLink)
	assert.Equal(t, "https://x/1", *updated.CompletedLink)
}

func TestClientMayNotEditAdminFields(t *testing.T) {
	db := setupDB(t)
	c := seedClient(t, db, quota.Map{domain.TaskBlog: {Total: 10, Remaining: 10}})
	svc := newOrderService(db)
	client := Actor{ID: c.ID, Role: domain.RoleClient}

	a, err := svc.Create(client, c.ID, CreateOrderInput{TaskType: domain.TaskBlogReview})
	require.NoError(t, err)

	link := "https://x/1"
	_, err = svc.Update(client, a.ID, UpdateOrderInput{CompletedLink: &link})
	assert.ErrorIs(t, err, ErrForbidden)

	caption := "updated notes"
	_, err = svc.Update(client, a.ID, UpdateOrderInput{Caption: &caption})
	assert.NoError(t, err)
}

func TestClientMayNotTouchOthersOrders(t *testing.T) {
	db := setupDB(t)
	c1 := seedClient(t, db, quota.Map{domain.TaskBlog: {Total: 10, Remaining: 10}})
	c2 := seedClient(t, db, quota.Map{domain.TaskBlog: {Total: 10, Remaining: 10}})
	svc := newOrderService(db)

	a, err := svc.Create(Actor{ID: c1.ID, Role: domain.RoleClient}, c1.ID, CreateOrderInput{TaskType: domain.TaskBlogReview})
	require.NoError(t, err)

	intruder := Actor{ID: c2.ID, Role: domain.RoleClient}
	caption := "x"
	_, err = svc.Update(intruder, a.ID, UpdateOrderInput{Caption: &caption})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.Delete(intruder, a.ID), ErrForbidden)
	_, err = svc.Create(intruder, c1.ID, CreateOrderInput{TaskType: domain.TaskBlogReview})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestReviewWorkflowEndToEnd(t *testing.T) {
	db := setupDB(t)
	c := seedClient(t, db, quota.Map{domain.TaskBlog: {Total: 10, Remaining: 10}})
	svc := newOrderService(db)
	admin := Actor{ID: 999, Role: domain.RoleAdmin}
	client := Actor{ID: c.ID, Role: domain.RoleClient}

	o, err := svc.Create(client, c.ID, CreateOrderInput{TaskType: domain.TaskBlogReview})
	require.NoError(t, err)

	_, err = svc.Transition(admin, o.ID, domain.StatusWorking, review.Request{})
	require.NoError(t, err)
	_, err = svc.Transition(admin, o.ID, domain.StatusDraftUploaded, review.Request{DraftText: "draft v1"})
	require.NoError(t, err)
	_, err = svc.Transition(client, o.ID, domain.StatusRevisionRequested, review.Request{RevisionRequest: "shorter please"})
	require.NoError(t, err)
	_, err = svc.Transition(admin, o.ID, domain.StatusDraftRevised, review.Request{DraftText: "draft v2"})
	require.NoError(t, err)
	_, err = svc.Transition(client, o.ID, domain.StatusClientApproved, review.Request{})
	require.NoError(t, err)
	got, err := svc.Transition(admin, o.ID, domain.StatusPublished, review.Request{CompletedLink: "https://y"})
	require.NoError(t, err)

	require.NotNil(t, got.CompletedLink)
	assert.Equal(t, "https://y", *got.CompletedLink)
	assert.Equal(t, "draft v2", got.DraftText)
	assert.Equal(t, "shorter please", got.RevisionRequest)
}

func TestPublishWithoutLinkRejected(t *testing.T) {
	db := setupDB(t)
	c := seedClient(t, db, quota.Map{domain.TaskReceipt: {Total: 5, Remaining: 5}})
	svc := newOrderService(db)
	admin := Actor{ID: 999, Role: domain.RoleAdmin}

	o, err := svc.Create(Actor{ID: c.ID, Role: domain.RoleClient}, c.ID, CreateOrderInput{TaskType: domain.TaskReceiptReview})
	require.NoError(t, err)
	_, err = svc.Transition(admin, o.ID, domain.StatusWorking, review.Request{})
	require.NoError(t, err)

	_, err = svc.Transition(admin, o.ID, domain.StatusPublished, review.Request{})
	assert.ErrorIs(t, err, review.ErrMissingLink)

	var row models.Order
	require.NoError(t, db.First(&row, o.ID).Error)
	assert.Equal(t, domain.StatusWorking, row.Status, "failed transition must not persist")
}

func TestRollbackFromPublishedClearsLink(t *testing.T) {
	db := setupDB(t)
	c := seedClient(t, db, quota.Map{domain.TaskBlog: {Total: 5, Remaining: 5}})
	svc := newOrderService(db)
	admin := Actor{ID: 999, Role: domain.RoleAdmin}

	o, err := svc.Create(Actor{ID: c.ID, Role: domain.RoleClient}, c.ID, CreateOrderInput{TaskType: domain.TaskBlogReview})
	require.NoError(t, err)
	_, err = svc.Transition(admin, o.ID, domain.StatusWorking, review.Request{})
	require.NoError(t, err)
	_, err = svc.Transition(admin, o.ID, domain.StatusDraftUploaded, review.Request{DraftText: "d"})
	require.NoError(t, err)
	_, err = svc.Transition(admin, o.ID, domain.StatusPublished, review.Request{CompletedLink: "https://y"})
	require.NoError(t, err)

	got, err := svc.Transition(admin, o.ID, domain.StatusDraftUploaded, review.Request{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraftUploaded, got.Status)
	assert.Nil(t, got.CompletedLink)
}

func TestSimpleTaskTransitionsAdminOnly(t *testing.T) {
	db := setupDB(t)
	c := seedClient(t, db, quota.Map{domain.TaskHotpost: {Total: 5, Remaining: 5}})
	svc := newOrderService(db)
	admin := Actor{ID: 999, Role: domain.RoleAdmin}
	client := Actor{ID: c.ID, Role: domain.RoleClient}

	o, err := svc.Create(client, c.ID, CreateOrderInput{TaskType: domain.TaskHotpost})
	require.NoError(t, err)

	_, err = svc.Transition(client, o.ID, domain.StatusWorking, review.Request{})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Transition(admin, o.ID, domain.StatusDone, review.Request{})
	require.NoError(t, err)

	_, err = svc.Transition(admin, o.ID, domain.StatusWorking, review.Request{})
	assert.ErrorIs(t, err, review.ErrInvalidTransition)
}
