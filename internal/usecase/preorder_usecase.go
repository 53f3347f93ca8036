package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/sirupsen/logrus"
)

type PreorderUseCase interface {
	Create(ctx context.Context, in domain.NewPreorder) (*domain.Preorder, error)
	Get(ctx context.Context, id int64) (*domain.Preorder, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Preorder, error)
	ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]domain.Preorder, error)
	List(ctx context.Context, filter domain.PreorderFilter) ([]domain.Preorder, error)
	UpdateStatus(ctx context.Context, id int64, status domain.PreorderStatus, changedBy int64) (*domain.Preorder, error)
	UpdateEstimatedDelivery(ctx context.Context, id int64, date time.Time) (*domain.Preorder, error)
	Cancel(ctx context.Context, id, requestingUserID int64) (*domain.Preorder, error)
	CancelForOrderLine(ctx context.Context, orderItemID, changedBy int64) error
}

var _ PreorderUseCase = (*preorderUseCase)(nil)

type preorderUseCase struct {
	preorderRepo domain.PreorderRepository
	uow          domain.UnitOfWork
	now          func() time.Time
	log          *logrus.Logger
}

// NewPreorderUseCase builds the preorder book. A nil clock means time.Now.
func NewPreorderUseCase(repo domain.PreorderRepository, uow domain.UnitOfWork, clock func() time.Time, logger *logrus.Logger) PreorderUseCase {
	if clock == nil {
		clock = time.Now
	}
	return &preorderUseCase{
		preorderRepo: repo,
		uow:          uow,
		now:          clock,
		log:          logger,
	}
}

// EstimateDelivery returns the calendar date lead-time weeks after now.
func EstimateDelivery(now time.Time, leadTime string) time.Time {
	d := now.AddDate(0, 0, 7*ParseLeadTimeWeeks(leadTime))
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

func (uc *preorderUseCase) Create(ctx context.Context, in domain.NewPreorder) (*domain.Preorder, error) {
	if in.UserID <= 0 || in.ProductID <= 0 {
		return nil, fmt.Errorf("preorder needs a user and a product: %w", domain.ErrInvalidInput)
	}
	if in.Quantity < 1 {
		return nil, fmt.Errorf("preorder quantity must be at least 1: %w", domain.ErrInvalidInput)
	}

	p := &domain.Preorder{
		UserID:            in.UserID,
		OrderID:           in.OrderID,
		OrderItemID:       in.OrderItemID,
		ProductID:         in.ProductID,
		VariationID:       in.VariationID,
		Quantity:          in.Quantity,
		EstimatedDelivery: EstimateDelivery(uc.now(), in.LeadTime),
		Status:            domain.PreorderPending,
	}
	created, err := uc.preorderRepo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	uc.log.WithFields(logrus.Fields{
		"preorder_id": created.ID,
		"product_id":  created.ProductID,
		"user_id":     created.UserID,
	}).Infof("Use Case: Preorder created, estimated delivery %s", created.EstimatedDelivery.Format("2006-01-02"))
	return created, nil
}

func (uc *preorderUseCase) Get(ctx context.Context, id int64) (*domain.Preorder, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid preorder ID %d: %w", id, domain.ErrInvalidInput)
	}
	return uc.preorderRepo.GetByID(ctx, id)
}

func (uc *preorderUseCase) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Preorder, error) {
	return uc.preorderRepo.List(ctx, domain.PreorderFilter{UserID: &userID, Limit: limit, Offset: offset})
}

func (uc *preorderUseCase) ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]domain.Preorder, error) {
	return uc.preorderRepo.List(ctx, domain.PreorderFilter{ProductID: &productID, Limit: limit, Offset: offset})
}

func (uc *preorderUseCase) List(ctx context.Context, filter domain.PreorderFilter) ([]domain.Preorder, error) {
	if filter.Status != nil && !domain.IsValidPreorderStatus(*filter.Status) {
		return nil, fmt.Errorf("unknown preorder status %q: %w", *filter.Status, domain.ErrInvalidInput)
	}
	return uc.preorderRepo.List(ctx, filter)
}

// UpdateStatus is the admin path. Any transition is allowed; backward moves
// are logged as warnings.
func (uc *preorderUseCase) UpdateStatus(ctx context.Context, id int64, status domain.PreorderStatus, changedBy int64) (*domain.Preorder, error) {
	if !domain.IsValidPreorderStatus(status) {
		return nil, fmt.Errorf("unknown preorder status %q: %w", status, domain.ErrInvalidState)
	}

	var updated *domain.Preorder
	err := uc.uow.Do(ctx, func(ctx context.Context) error {
		p, err := uc.preorderRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p.Status == status {
			updated = p
			return nil
		}
		if !domain.IsForwardPreorderTransition(p.Status, status) {
			uc.log.WithFields(logrus.Fields{
				"preorder_id": id,
				"from":        p.Status,
				"to":          status,
				"changed_by":  changedBy,
			}).Warn("Use Case: Non-forward preorder status transition")
		}
		if err := uc.setStatus(ctx, p, status, changedBy); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (uc *preorderUseCase) UpdateEstimatedDelivery(ctx context.Context, id int64, date time.Time) (*domain.Preorder, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("estimated delivery date is required: %w", domain.ErrInvalidInput)
	}
	if err := uc.preorderRepo.UpdateEstimatedDelivery(ctx, id, date); err != nil {
		return nil, err
	}
	uc.log.Infof("Use Case: Preorder %d estimated delivery set to %s", id, date.Format("2006-01-02"))
	return uc.preorderRepo.GetByID(ctx, id)
}

// Cancel is the customer path: only the owner, and only before production.
func (uc *preorderUseCase) Cancel(ctx context.Context, id, requestingUserID int64) (*domain.Preorder, error) {
	var cancelled *domain.Preorder
	err := uc.uow.Do(ctx, func(ctx context.Context) error {
		p, err := uc.preorderRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p.UserID != requestingUserID {
			uc.log.Warnf("Use Case: User %d attempted to cancel preorder %d owned by user %d", requestingUserID, id, p.UserID)
			return fmt.Errorf("preorder %d belongs to another user: %w", id, domain.ErrForbidden)
		}
		if !p.Status.IsUserCancellable() {
			return fmt.Errorf("preorder %d is %s and can no longer be cancelled: %w", id, p.Status, domain.ErrInvalidState)
		}
		if err := uc.setStatus(ctx, p, domain.PreorderCancelled, requestingUserID); err != nil {
			return err
		}
		cancelled = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// CancelForOrderLine cancels the preorder spawned by an order line. A line
// whose preorder is already cancelled is left alone.
func (uc *preorderUseCase) CancelForOrderLine(ctx context.Context, orderItemID, changedBy int64) error {
	return uc.uow.Do(ctx, func(ctx context.Context) error {
		p, err := uc.preorderRepo.GetByOrderItem(ctx, orderItemID)
		if err != nil {
			return err
		}
		if p.Status == domain.PreorderCancelled {
			return nil
		}
		return uc.setStatus(ctx, p, domain.PreorderCancelled, changedBy)
	})
}

func (uc *preorderUseCase) setStatus(ctx context.Context, p *domain.Preorder, status domain.PreorderStatus, changedBy int64) error {
	old := p.Status
	if err := uc.preorderRepo.UpdateStatus(ctx, p.ID, status); err != nil {
		return err
	}
	if err := uc.preorderRepo.AppendStatusLog(ctx, &domain.PreorderStatusLog{
		PreorderID: p.ID,
		OldStatus:  old,
		NewStatus:  status,
		ChangedBy:  changedBy,
	}); err != nil {
		return err
	}
	p.Status = status
	uc.log.Infof("Use Case: Preorder %d status %s -> %s (by %d)", p.ID, old, status, changedBy)
	return nil
}
