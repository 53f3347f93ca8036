package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const productColumns = `id, name, description, price, category_id, stock, is_preorder, preorder_lead_time, created_at`

type postgresProductRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewPostgresProductRepository(db *sqlx.DB, logger *logrus.Logger) domain.ProductRepository {
	return &postgresProductRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresProductRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
        INSERT INTO products (name, description, price, category_id, stock, is_preorder, preorder_lead_time)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at`
	err := executor(ctx, r.db).QueryRowxContext(ctx, query,
		product.Name,
		product.Description,
		product.Price,
		product.CategoryID,
		product.Stock,
		product.IsPreorder,
		product.PreorderLeadTime,
	).Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		r.log.Errorf("Repository: Failed to create product '%s': %v", product.Name, err)
		return nil, storageErr("create product", err)
	}
	r.log.Infof("Repository: Product created with ID: %d, Name: %s", product.ID, product.Name)
	return product, nil
}

func (r *postgresProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	var product domain.Product
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &product, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Product with ID %d not found", id)
			return nil, notFound("product", id)
		}
		r.log.Errorf("Repository: Failed to get product by ID %d: %v", id, err)
		return nil, storageErr("get product", err)
	}
	return &product, nil
}

func (r *postgresProductRepository) Update(ctx context.Context, id int64, update domain.ProductUpdate) (*domain.Product, error) {
	setClauses := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Price != nil {
		add("price", *update.Price)
	}
	if update.ClearCategory {
		add("category_id", nil)
	} else if update.CategoryID != nil {
		add("category_id", *update.CategoryID)
	}
	if update.IsPreorder != nil {
		add("is_preorder", *update.IsPreorder)
	}
	if update.PreorderLeadTime != nil {
		add("preorder_lead_time", *update.PreorderLeadTime)
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := "UPDATE products SET " + strings.Join(setClauses, ", ") + fmt.Sprintf(" WHERE id = $%d", len(args))
	r.log.Debugf("Repository: Executing product update for ID %d: %s", id, query)

	result, err := executor(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.log.Errorf("Repository: Failed to update product ID %d: %v", id, err)
		return nil, storageErr("update product", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, storageErr("update product", err)
	}
	if rows == 0 {
		r.log.Warnf("Repository: Product with ID %d not found for update", id)
		return nil, notFound("product", id)
	}
	return r.GetByID(ctx, id)
}

func (r *postgresProductRepository) Delete(ctx context.Context, id int64) error {
	result, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete product ID %d: %v", id, err)
		return storageErr("delete product", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return storageErr("delete product", err)
	}
	if rows == 0 {
		r.log.Warnf("Repository: Attempted to delete non-existent product ID %d", id)
		return notFound("product", id)
	}
	r.log.Infof("Repository: Product deleted with ID: %d", id)
	return nil
}

func (r *postgresProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)

	where := []string{}
	args := []interface{}{}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		args = append(args, "%"+kw+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY id ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	products := []domain.Product{}
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &products, query, args...); err != nil {
		r.log.Errorf("Repository: Failed to list products: %v", err)
		return nil, storageErr("list products", err)
	}
	r.log.Debugf("Repository: Retrieved %d products (limit: %d, offset: %d)", len(products), limit, offset)
	return products, nil
}

func (r *postgresProductRepository) AddVariation(ctx context.Context, variation *domain.ProductVariation) (*domain.ProductVariation, error) {
	query := `
        INSERT INTO product_variations (product_id, name, value, price_adjustment, stock)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id`
	err := executor(ctx, r.db).QueryRowxContext(ctx, query,
		variation.ProductID,
		variation.Name,
		variation.Value,
		variation.PriceAdjustment,
		variation.Stock,
	).Scan(&variation.ID)
	if err != nil {
		r.log.Errorf("Repository: Failed to add variation to product %d: %v", variation.ProductID, err)
		return nil, storageErr("add variation", err)
	}
	r.log.Infof("Repository: Variation %d added to product %d", variation.ID, variation.ProductID)
	return variation, nil
}

func (r *postgresProductRepository) GetVariation(ctx context.Context, productID, variationID int64) (*domain.ProductVariation, error) {
	query := `
        SELECT id, product_id, name, value, price_adjustment, stock
        FROM product_variations
        WHERE id = $1 AND product_id = $2`
	var v domain.ProductVariation
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &v, query, variationID, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("variation", variationID)
		}
		return nil, storageErr("get variation", err)
	}
	return &v, nil
}

func (r *postgresProductRepository) ListVariations(ctx context.Context, productID int64) ([]domain.ProductVariation, error) {
	query := `
        SELECT id, product_id, name, value, price_adjustment, stock
        FROM product_variations
        WHERE product_id = $1
        ORDER BY id ASC`
	variations := []domain.ProductVariation{}
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &variations, query, productID); err != nil {
		r.log.Errorf("Repository: Failed to list variations for product %d: %v", productID, err)
		return nil, storageErr("list variations", err)
	}
	return variations, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
