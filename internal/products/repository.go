package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/micaaprocofio/ut5-tfu/internal/domain"
)

const table = "products.products"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p domain.NewProduct) (*domain.Product, error) {
	query, args, err := psql.Insert(table).
		Columns("name", "price", "stock").
		Values(p.Name, p.Price, p.Stock).
		Suffix("RETURNING id, name, price, stock").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert product: %w", err)
	}

	product := &domain.Product{}
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&product.ID, &product.Name, &product.Price, &product.Stock)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}

	return product, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query, args, err := psql.Select("id", "name", "price", "stock").
		From(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select product: %w", err)
	}

	product := &domain.Product{}
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&product.ID, &product.Name, &product.Price, &product.Stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return product, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	query, args, err := psql.Select("id", "name", "price", "stock").
		From(table).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list products: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock); err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
