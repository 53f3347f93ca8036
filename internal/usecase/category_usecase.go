package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/sirupsen/logrus"
)

type CategoryUseCase interface {
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

var _ CategoryUseCase = (*categoryUseCase)(nil)

type categoryUseCase struct {
	categoryRepo domain.CategoryRepository
	log          *logrus.Logger
}

func NewCategoryUseCase(repo domain.CategoryRepository, logger *logrus.Logger) CategoryUseCase {
	return &categoryUseCase{
		categoryRepo: repo,
		log:          logger,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		uc.log.Warn("Use Case: Attempted to create category with empty name")
		return nil, fmt.Errorf("category name cannot be empty: %w", domain.ErrInvalidInput)
	}
	created, err := uc.categoryRepo.Create(ctx, category)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create category '%s': %v", category.Name, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Category '%s' created with ID %d", created.Name, created.ID)
	return created, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid category ID %d: %w", id, domain.ErrInvalidInput)
	}
	return uc.categoryRepo.GetByID(ctx, id)
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category.ID <= 0 {
		return nil, fmt.Errorf("invalid category ID %d: %w", category.ID, domain.ErrInvalidInput)
	}
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		uc.log.Warnf("Use Case: Attempted update for category ID %d with empty name", category.ID)
		return nil, fmt.Errorf("category name cannot be empty: %w", domain.ErrInvalidInput)
	}
	updated, err := uc.categoryRepo.Update(ctx, category)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to update category ID %d: %v", category.ID, err)
		return nil, err
	}
	return updated, nil
}

// DeleteCategory detaches products through the foreign key's ON DELETE SET NULL.
func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("invalid category ID %d: %w", id, domain.ErrInvalidInput)
	}
	if err := uc.categoryRepo.Delete(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete category ID %d: %v", id, err)
		return err
	}
	uc.log.Infof("Use Case: Category deleted for ID %d", id)
	return nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return uc.categoryRepo.List(ctx)
}
