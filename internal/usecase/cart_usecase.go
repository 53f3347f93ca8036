package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type CartUseCase interface {
	Lines(ctx context.Context, userID int64) ([]domain.CartLine, error)
	Snapshot(ctx context.Context, userID int64) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, productID int64, variationID *int64, quantity int) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, itemID int64, quantity int) error
	RemoveItem(ctx context.Context, userID, itemID int64) error
	RemoveItems(ctx context.Context, userID int64, itemIDs []int64) error
	Clear(ctx context.Context, userID int64) error
}

var _ CartUseCase = (*cartUseCase)(nil)

type cartUseCase struct {
	cartRepo    domain.CartRepository
	productRepo domain.ProductRepository
	uow         domain.UnitOfWork
	log         *logrus.Logger
}

func NewCartUseCase(cartRepo domain.CartRepository, productRepo domain.ProductRepository, uow domain.UnitOfWork, logger *logrus.Logger) CartUseCase {
	return &cartUseCase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		uow:         uow,
		log:         logger,
	}
}

func (uc *cartUseCase) Lines(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	lines, err := uc.cartRepo.ListLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].UnitPrice = lines[i].BasePrice.Add(lines[i].PriceAdjustment)
		lines[i].Available = lines[i].Checkoutable()
	}
	return lines, nil
}

// Snapshot totals only the lines that can be checked out now. Lines short
// on stock are still listed so the customer can see them.
func (uc *cartUseCase) Snapshot(ctx context.Context, userID int64) (*domain.Cart, error) {
	lines, err := uc.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, l := range lines {
		if l.Available {
			total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
	}
	return &domain.Cart{Lines: lines, Total: total}, nil
}

func (uc *cartUseCase) AddItem(ctx context.Context, userID, productID int64, variationID *int64, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", domain.ErrInvalidInput)
	}
	if _, err := uc.productRepo.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	if variationID != nil {
		if _, err := uc.productRepo.GetVariation(ctx, productID, *variationID); err != nil {
			return nil, err
		}
	}

	var item *domain.CartItem
	err := uc.uow.Do(ctx, func(ctx context.Context) error {
		existing, err := uc.cartRepo.FindItem(ctx, userID, productID, variationID)
		switch {
		case err == nil:
			existing.Quantity += quantity
			if err := uc.cartRepo.SetQuantity(ctx, existing.ID, existing.Quantity); err != nil {
				return err
			}
			item = existing
			return nil
		case errors.Is(err, domain.ErrNotFound):
			item, err = uc.cartRepo.Insert(ctx, &domain.CartItem{
				UserID:      userID,
				ProductID:   productID,
				VariationID: variationID,
				Quantity:    quantity,
			})
			return err
		default:
			return err
		}
	})
	if err != nil {
		uc.log.Errorf("Use Case: Failed to add product %d to cart of user %d: %v", productID, userID, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Cart of user %d now holds %d of product %d", userID, item.Quantity, productID)
	return item, nil
}

// UpdateQuantity sets an item's quantity. Zero or less removes the item.
func (uc *cartUseCase) UpdateQuantity(ctx context.Context, userID, itemID int64, quantity int) error {
	if _, err := uc.ownedItem(ctx, userID, itemID); err != nil {
		return err
	}
	if quantity <= 0 {
		return uc.cartRepo.Delete(ctx, itemID)
	}
	return uc.cartRepo.SetQuantity(ctx, itemID, quantity)
}

func (uc *cartUseCase) RemoveItem(ctx context.Context, userID, itemID int64) error {
	if _, err := uc.ownedItem(ctx, userID, itemID); err != nil {
		return err
	}
	return uc.cartRepo.Delete(ctx, itemID)
}

func (uc *cartUseCase) RemoveItems(ctx context.Context, userID int64, itemIDs []int64) error {
	return uc.cartRepo.DeleteMany(ctx, userID, itemIDs)
}

func (uc *cartUseCase) Clear(ctx context.Context, userID int64) error {
	return uc.cartRepo.Clear(ctx, userID)
}

func (uc *cartUseCase) ownedItem(ctx context.Context, userID, itemID int64) (*domain.CartItem, error) {
	item, err := uc.cartRepo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		uc.log.Warnf("Use Case: User %d attempted to modify cart item %d owned by user %d", userID, itemID, item.UserID)
		return nil, fmt.Errorf("cart item %d belongs to another user: %w", itemID, domain.ErrForbidden)
	}
	return item, nil
}
