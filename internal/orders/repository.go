package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/micaaprocofio/ut5-tfu/internal/domain"
)

const table = "orders.orders"

var (
	psql    = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	columns = []string{"id", "customer_id", "date", "total"}
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o domain.NewOrder, date time.Time) (*domain.Order, error) {
	query, args, err := psql.Insert(table).
		Columns("customer_id", "date", "total").
		Values(o.CustomerID, date, o.Total).
		Suffix("RETURNING id, customer_id, date, total").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert order: %w", err)
	}

	order := &domain.Order{}
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&order.ID, &order.CustomerID, &order.Date, &order.Total)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	order.Date = order.Date.UTC()

	return order, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query, args, err := psql.Select(columns...).
		From(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select order: %w", err)
	}

	order := &domain.Order{}
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&order.ID, &order.CustomerID, &order.Date, &order.Total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	order.Date = order.Date.UTC()

	return order, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	return r.query(ctx, psql.Select(columns...).From(table).OrderBy("id"))
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	return r.query(ctx, psql.Select(columns...).
		From(table).
		Where(sq.Eq{"customer_id": customerID}).
		OrderBy("id"))
}

func (r *OrderRepository) query(ctx context.Context, builder sq.SelectBuilder) ([]domain.Order, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build order query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orders := []domain.Order{}
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.CustomerID, &order.Date, &order.Total); err != nil {
			return nil, err
		}
		order.Date = order.Date.UTC()
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
