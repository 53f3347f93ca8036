package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/sirupsen/logrus"
)

type StockUseCase interface {
	CheckStock(ctx context.Context, productID int64, variationID *int64) (*domain.StockInfo, error)
	ApplyDelta(ctx context.Context, productID int64, variationID *int64, delta int, reason string) (*domain.StockLogEntry, error)
	AdjustStock(ctx context.Context, productID int64, variationID *int64, delta int, reason string) (*domain.StockLogEntry, error)
	History(ctx context.Context, productID int64, limit int) ([]domain.StockLogEntry, error)
}

var _ StockUseCase = (*stockUseCase)(nil)

type stockUseCase struct {
	stockRepo domain.StockRepository
	uow       domain.UnitOfWork
	log       *logrus.Logger
}

func NewStockUseCase(stockRepo domain.StockRepository, uow domain.UnitOfWork, logger *logrus.Logger) StockUseCase {
	return &stockUseCase{
		stockRepo: stockRepo,
		uow:       uow,
		log:       logger,
	}
}

func (uc *stockUseCase) CheckStock(ctx context.Context, productID int64, variationID *int64) (*domain.StockInfo, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("invalid product ID %d: %w", productID, domain.ErrInvalidInput)
	}
	quantity, err := uc.stockRepo.GetQuantity(ctx, productID, variationID)
	if err != nil {
		return nil, err
	}
	return &domain.StockInfo{
		ProductID:   productID,
		VariationID: variationID,
		Quantity:    quantity,
		IsAvailable: quantity > 0,
		Status:      domain.StockStatusFor(quantity),
	}, nil
}

// ApplyDelta changes stock by delta and records exactly one log entry in the
// same transaction. A rejected delta changes nothing.
func (uc *stockUseCase) ApplyDelta(ctx context.Context, productID int64, variationID *int64, delta int, reason string) (*domain.StockLogEntry, error) {
	var entry *domain.StockLogEntry
	err := uc.uow.Do(ctx, func(ctx context.Context) error {
		quantity, err := uc.stockRepo.ApplyDelta(ctx, productID, variationID, delta)
		if err != nil {
			return err
		}

		entry = &domain.StockLogEntry{
			ProductID:   productID,
			VariationID: variationID,
			Type:        domain.StockLogTypeFor(delta),
			Quantity:    abs(delta),
			Reason:      reason,
		}
		if err := uc.stockRepo.AppendLog(ctx, entry); err != nil {
			return err
		}

		uc.log.WithFields(logrus.Fields{
			"product_id": productID,
			"delta":      delta,
			"stock":      quantity,
		}).Infof("Use Case: Stock changed (%s)", reason)
		return nil
	})
	if err != nil {
		uc.log.WithFields(logrus.Fields{
			"product_id": productID,
			"delta":      delta,
		}).Warnf("Use Case: Stock delta rejected: %v", err)
		return nil, err
	}
	return entry, nil
}

func (uc *stockUseCase) AdjustStock(ctx context.Context, productID int64, variationID *int64, delta int, reason string) (*domain.StockLogEntry, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("adjustment reason is required: %w", domain.ErrInvalidInput)
	}
	if productID <= 0 {
		return nil, fmt.Errorf("invalid product ID %d: %w", productID, domain.ErrInvalidInput)
	}
	uc.log.Infof("Use Case: Manual stock adjustment of %d for product %d", delta, productID)
	return uc.ApplyDelta(ctx, productID, variationID, delta, reason)
}

func (uc *stockUseCase) History(ctx context.Context, productID int64, limit int) ([]domain.StockLogEntry, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("invalid product ID %d: %w", productID, domain.ErrInvalidInput)
	}
	return uc.stockRepo.ListLogs(ctx, productID, limit)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
