package service

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"admoa/internal/domain"
	"admoa/internal/models"
	"admoa/internal/quota"
	"admoa/internal/repository"
	"admoa/internal/review"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrForbidden       = errors.New("forbidden")
	ErrUnknownTaskType = errors.New("unknown task type")
	ErrBadRequestCount = errors.New("request count must be positive")
)

// Actor identifies who is performing an operation. Role checks are explicit
// parameters here, never ambient state.
type Actor struct {
	ID   uint
	Role string
}

func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

type OrderService struct {
	db         *gorm.DB
	clientRepo *repository.ClientRepository
	orderRepo  *repository.OrderRepository
}

func NewOrderService(db *gorm.DB, clientRepo *repository.ClientRepository, orderRepo *repository.OrderRepository) *OrderService {
	return &OrderService{db: db, clientRepo: clientRepo, orderRepo: orderRepo}
}

type CreateOrderInput struct {
	TaskType     string
	Caption      string
	ImageURLs    []string
	RequestCount int
	ReviewerName string
}

// Create debits the client's quota and persists the order as pending, in
// one transaction. On insufficient quota nothing is written.
func (s *OrderService) Create(actor Actor, clientID uint, in CreateOrderInput) (*models.Order, error) {
	if !actor.IsAdmin() && actor.ID != clientID {
		return nil, ErrForbidden
	}
	if !domain.IsTaskType(in.TaskType) {
		return nil, ErrUnknownTaskType
	}
	count := in.RequestCount
	if count == 0 {
		count = 1
	}
	if count < 0 {
		return nil, ErrBadRequestCount
	}

	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		client, err := s.clientRepo.WithTx(tx).GetByID(clientID)
		if err != nil {
			return err
		}
		ledger, err := quota.FromJSON(client.Quota)
		if err != nil {
			return err
		}
		key := domain.QuotaKey(in.TaskType)
		if err := ledger.Debit(key, count); err != nil {
			return err
		}

		images, err := json.Marshal(in.ImageURLs)
		if err != nil {
			return err
		}
		order = &models.Order{
			ClientID:     clientID,
			TaskType:     in.TaskType,
			Status:       domain.StatusPending,
			Caption:      in.Caption,
			RequestCount: count,
			ImageURLs:    images,
			ReviewerName: in.ReviewerName,
		}
		if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
			return err
		}
		return s.clientRepo.WithTx(tx).SaveQuota(client, ledger)
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"order_id": order.ID, "client_id": clientID, "task_type": in.TaskType, "count": count,
	}).Info("order created")
	return order, nil
}

type UpdateOrderInput struct {
	Caption         *string
	ImageURLs       []string
	CompletedLink   *string
	CompletedLink2  *string
	ReviewerName    *string
	RevisionText    *string
	RevisionRequest *string
	DraftText       *string
}

// clientEditable reports whether the input touches only the fields a client
// may self-service.
func (in UpdateOrderInput) clientEditable() bool {
	return in.CompletedLink == nil && in.CompletedLink2 == nil &&
		in.ReviewerName == nil && in.DraftText == nil && in.RevisionRequest == nil
}

// Update writes field changes. Setting a link field strips the same trimmed
// string from every other order first, so a link belongs to at most one
// order at a time.
func (s *OrderService) Update(actor Actor, id uint, in UpdateOrderInput) (*models.Order, error) {
	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.orderRepo.WithTx(tx).GetByID(id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() {
			if actor.ID != order.ClientID {
				return ErrForbidden
			}
			if !in.clientEditable() || order.Status == domain.StatusPublished {
				return ErrForbidden
			}
		}

		if in.Caption != nil {
			order.Caption = *in.Caption
		}
		if in.ImageURLs != nil {
			images, err := json.Marshal(in.ImageURLs)
			if err != nil {
				return err
			}
			order.ImageURLs = images
		}
		if in.ReviewerName != nil {
			order.ReviewerName = *in.ReviewerName
		}
		if in.DraftText != nil {
			order.DraftText = *in.DraftText
		}
		if in.RevisionRequest != nil {
			order.RevisionRequest = *in.RevisionRequest
		}
		if in.RevisionText != nil {
			order.RevisionText = *in.RevisionText
		}
		if in.CompletedLink != nil {
			link, err := s.dedupLink(tx, order.ID, *in.CompletedLink)
			if err != nil {
				return err
			}
			order.CompletedLink = link
		}
		if in.CompletedLink2 != nil {
			link, err := s.dedupLink(tx, order.ID, *in.CompletedLink2)
			if err != nil {
				return err
			}
			order.CompletedLink2 = link
		}
		return s.orderRepo.WithTx(tx).Save(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// dedupLink trims the value and, when non-empty, nulls the matching link on
// every other order. Returns the value to store (nil for empty).
func (s *OrderService) dedupLink(tx *gorm.DB, orderID uint, raw string) (*string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	if err := s.orderRepo.WithTx(tx).ClearMatchingLinks(orderID, trimmed); err != nil {
		return nil, err
	}
	return &trimmed, nil
}

// Transition advances an order's status. Review types go through the
// publication state machine; everything else uses the simple admin-only
// pending/working/done table.
func (s *OrderService) Transition(actor Actor, id uint, to string, req review.Request) (*models.Order, error) {
	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.orderRepo.WithTx(tx).GetByID(id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && actor.ID != order.ClientID {
			return ErrForbidden
		}

		if domain.IsReviewType(order.TaskType) {
			eff, err := review.Apply(order.TaskType, order.Status, to, actor.Role, req)
			if err != nil {
				return err
			}
			if eff.SetDraftText {
				order.DraftText = strings.TrimSpace(req.DraftText)
			}
			if eff.SetRevisionRequest {
				order.RevisionRequest = strings.TrimSpace(req.RevisionRequest)
			}
			if eff.SetCompletedLink {
				link, err := s.dedupLink(tx, order.ID, req.CompletedLink)
				if err != nil {
					return err
				}
				order.CompletedLink = link
			}
			if eff.ClearCompletedLink {
				order.CompletedLink = nil
			}
		} else {
			if !actor.IsAdmin() {
				return ErrForbidden
			}
			if !review.SimpleAllowed(order.Status, to) {
				return review.ErrInvalidTransition
			}
		}
		order.Status = to
		return s.orderRepo.WithTx(tx).Save(order)
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"order_id": order.ID, "status": order.Status,
	}).Info("order status changed")
	return order, nil
}

// Delete removes the order and, when it still held quota (pending or done),
// credits the units back and recomputes the client aggregate. Restoration
// is computed from the stored row before the delete.
func (s *OrderService) Delete(actor Actor, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.WithTx(tx).GetByID(id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && actor.ID != order.ClientID {
			return ErrForbidden
		}

		if order.Status == domain.StatusPending || order.Status == domain.StatusDone {
			client, err := s.clientRepo.WithTx(tx).GetByID(order.ClientID)
			if err != nil {
				return err
			}
			ledger, err := quota.FromJSON(client.Quota)
			if err != nil {
				return err
			}
			ledger.Credit(domain.QuotaKey(order.TaskType), restoreCount(order))
			if err := s.clientRepo.WithTx(tx).SaveQuota(client, ledger); err != nil {
				return err
			}
		}
		if err := s.orderRepo.WithTx(tx).Delete(order.ID); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"order_id": order.ID, "client_id": order.ClientID, "status": order.Status,
		}).Info("order deleted")
		return nil
	})
}

var (
	followerCountRe = regexp.MustCompile(`팔로워 갯수:\s*(\d+)`)
	likeCountRe     = regexp.MustCompile(`좋아요 갯수:\s*(\d+)`)
)

// restoreCount returns the quota units to credit back on delete. The
// request_count column is authoritative; legacy rows (count 0) fall back to
// the caption's "key: value" lines, defaulting to 1 when unparseable.
func restoreCount(o *models.Order) int {
	if o.RequestCount > 0 {
		return o.RequestCount
	}
	var re *regexp.Regexp
	switch o.TaskType {
	case domain.TaskFollower:
		re = followerCountRe
	case domain.TaskLike:
		re = likeCountRe
	default:
		return 1
	}
	m := re.FindStringSubmatch(o.Caption)
	if len(m) != 2 {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 1
	}
	return n
}
