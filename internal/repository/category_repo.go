package repository

import (
	"context"
	"database/sql"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type postgresCategoryRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewPostgresCategoryRepository(db *sqlx.DB, logger *logrus.Logger) domain.CategoryRepository {
	return &postgresCategoryRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresCategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	err := executor(ctx, r.db).QueryRowxContext(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id`, category.Name).Scan(&category.ID)
	if err != nil {
		r.log.Errorf("Repository: Failed to create category '%s': %v", category.Name, err)
		return nil, storageErr("create category", err)
	}
	r.log.Infof("Repository: Category created with ID: %d, Name: %s", category.ID, category.Name)
	return category, nil
}

func (r *postgresCategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var category domain.Category
	err := sqlx.GetContext(ctx, executor(ctx, r.db), &category, `SELECT id, name FROM categories WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Category with ID %d not found", id)
			return nil, notFound("category", id)
		}
		return nil, storageErr("get category", err)
	}
	return &category, nil
}

func (r *postgresCategoryRepository) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	result, err := executor(ctx, r.db).ExecContext(ctx,
		`UPDATE categories SET name = $1 WHERE id = $2`, category.Name, category.ID)
	if err != nil {
		r.log.Errorf("Repository: Failed to update category ID %d: %v", category.ID, err)
		return nil, storageErr("update category", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, storageErr("update category", err)
	}
	if rows == 0 {
		return nil, notFound("category", category.ID)
	}
	r.log.Infof("Repository: Category updated with ID: %d", category.ID)
	return category, nil
}

func (r *postgresCategoryRepository) Delete(ctx context.Context, id int64) error {
	result, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete category ID %d: %v", id, err)
		return storageErr("delete category", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return storageErr("delete category", err)
	}
	if rows == 0 {
		return notFound("category", id)
	}
	r.log.Infof("Repository: Category deleted with ID: %d", id)
	return nil
}

func (r *postgresCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	categories := []domain.Category{}
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &categories, `SELECT id, name FROM categories ORDER BY name ASC`); err != nil {
		r.log.Errorf("Repository: Failed to list categories: %v", err)
		return nil, storageErr("list categories", err)
	}
	return categories, nil
}
