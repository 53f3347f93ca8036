package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/sirupsen/logrus"
)

type ProductUseCase interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, update domain.ProductUpdate) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	AddVariation(ctx context.Context, variation *domain.ProductVariation) (*domain.ProductVariation, error)
	ListVariations(ctx context.Context, productID int64) ([]domain.ProductVariation, error)
}

var _ ProductUseCase = (*productUseCase)(nil)

type productUseCase struct {
	productRepo  domain.ProductRepository
	categoryRepo domain.CategoryRepository
	stock        StockUseCase
	uow          domain.UnitOfWork
	log          *logrus.Logger
}

func NewProductUseCase(pRepo domain.ProductRepository, cRepo domain.CategoryRepository, stock StockUseCase, uow domain.UnitOfWork, logger *logrus.Logger) ProductUseCase {
	return &productUseCase{
		productRepo:  pRepo,
		categoryRepo: cRepo,
		stock:        stock,
		uow:          uow,
		log:          logger,
	}
}

// CreateProduct inserts the product with zero stock and books the initial
// quantity through the stock ledger. Preorder products always start at zero.
func (uc *productUseCase) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		uc.log.Warn("Use Case: Attempted to create product with empty name")
		return nil, fmt.Errorf("product name cannot be empty: %w", domain.ErrInvalidInput)
	}
	if product.Price.IsNegative() {
		return nil, fmt.Errorf("product price cannot be negative: %w", domain.ErrInvalidInput)
	}
	if product.Stock < 0 {
		return nil, fmt.Errorf("product stock cannot be negative: %w", domain.ErrInvalidInput)
	}
	if product.IsPreorder && strings.TrimSpace(product.PreorderLeadTime) == "" {
		return nil, fmt.Errorf("preorder products need a lead time: %w", domain.ErrInvalidInput)
	}
	if product.CategoryID != nil {
		if _, err := uc.categoryRepo.GetByID(ctx, *product.CategoryID); err != nil {
			uc.log.Warnf("Use Case: Category ID %d not found during product creation: %v", *product.CategoryID, err)
			return nil, fmt.Errorf("category %d does not exist: %w", *product.CategoryID, domain.ErrInvalidInput)
		}
	}

	initial := product.Stock
	if product.IsPreorder {
		if initial > 0 {
			uc.log.Infof("Use Case: Ignoring initial stock %d for preorder product '%s'", initial, product.Name)
		}
		initial = 0
	}
	product.Stock = 0

	err := uc.uow.Do(ctx, func(ctx context.Context) error {
		if _, err := uc.productRepo.Create(ctx, product); err != nil {
			return err
		}
		if initial > 0 {
			if _, err := uc.stock.ApplyDelta(ctx, product.ID, nil, initial, "initial stock"); err != nil {
				return err
			}
			product.Stock = initial
		}
		return nil
	})
	if err != nil {
		uc.log.Errorf("Use Case: Failed to create product '%s': %v", product.Name, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Product '%s' created with ID %d", product.Name, product.ID)
	return product, nil
}

// GetProduct returns the product with live stock and its variations.
func (uc *productUseCase) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid product ID %d: %w", id, domain.ErrInvalidInput)
	}
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info, err := uc.stock.CheckStock(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	product.Stock = info.Quantity

	variations, err := uc.productRepo.ListVariations(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Variations = variations
	return product, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, id int64, update domain.ProductUpdate) (*domain.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid product ID %d: %w", id, domain.ErrInvalidInput)
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, fmt.Errorf("product name cannot be empty: %w", domain.ErrInvalidInput)
		}
		update.Name = &name
	}
	if update.Price != nil && update.Price.IsNegative() {
		return nil, fmt.Errorf("product price cannot be negative: %w", domain.ErrInvalidInput)
	}
	if update.CategoryID != nil && !update.ClearCategory {
		if _, err := uc.categoryRepo.GetByID(ctx, *update.CategoryID); err != nil {
			return nil, fmt.Errorf("category %d does not exist: %w", *update.CategoryID, domain.ErrInvalidInput)
		}
	}

	var updated *domain.Product
	err := uc.uow.Do(ctx, func(ctx context.Context) error {
		current, err := uc.productRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		preorder := current.IsPreorder
		if update.IsPreorder != nil {
			preorder = *update.IsPreorder
		}
		leadTime := current.PreorderLeadTime
		if update.PreorderLeadTime != nil {
			leadTime = *update.PreorderLeadTime
		}
		if preorder && strings.TrimSpace(leadTime) == "" {
			return fmt.Errorf("preorder products need a lead time: %w", domain.ErrInvalidInput)
		}

		if updated, err = uc.productRepo.Update(ctx, id, update); err != nil {
			return err
		}

		if preorder && !current.IsPreorder {
			quantity, err := uc.stock.CheckStock(ctx, id, nil)
			if err != nil {
				return err
			}
			if quantity.Quantity > 0 {
				if _, err := uc.stock.ApplyDelta(ctx, id, nil, -quantity.Quantity, "switched to preorder"); err != nil {
					return err
				}
			}
			updated.Stock = 0
		}
		return nil
	})
	if err != nil {
		uc.log.Errorf("Use Case: Failed to update product ID %d: %v", id, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Product updated for ID %d", id)
	return updated, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("invalid product ID %d: %w", id, domain.ErrInvalidInput)
	}
	if err := uc.productRepo.Delete(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Failed to delete product ID %d: %v", id, err)
		return err
	}
	uc.log.Infof("Use Case: Product deleted for ID %d", id)
	return nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if filter.CategoryID != nil {
		if _, err := uc.categoryRepo.GetByID(ctx, *filter.CategoryID); err != nil {
			return nil, err
		}
	}
	return uc.productRepo.List(ctx, filter)
}

func (uc *productUseCase) AddVariation(ctx context.Context, variation *domain.ProductVariation) (*domain.ProductVariation, error) {
	variation.Name = strings.TrimSpace(variation.Name)
	variation.Value = strings.TrimSpace(variation.Value)
	if variation.Name == "" || variation.Value == "" {
		return nil, fmt.Errorf("variation name and value are required: %w", domain.ErrInvalidInput)
	}
	if variation.Stock < 0 {
		return nil, fmt.Errorf("variation stock cannot be negative: %w", domain.ErrInvalidInput)
	}

	err := uc.uow.Do(ctx, func(ctx context.Context) error {
		product, err := uc.productRepo.GetByID(ctx, variation.ProductID)
		if err != nil {
			return err
		}
		initial := variation.Stock
		if product.IsPreorder {
			initial = 0
		}
		variation.Stock = 0
		if _, err := uc.productRepo.AddVariation(ctx, variation); err != nil {
			return err
		}
		if initial > 0 {
			if _, err := uc.stock.ApplyDelta(ctx, variation.ProductID, &variation.ID, initial, "initial stock"); err != nil {
				return err
			}
			variation.Stock = initial
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Infof("Use Case: Variation %d (%s: %s) added to product %d", variation.ID, variation.Name, variation.Value, variation.ProductID)
	return variation, nil
}

func (uc *productUseCase) ListVariations(ctx context.Context, productID int64) ([]domain.ProductVariation, error) {
	return uc.productRepo.ListVariations(ctx, productID)
}
