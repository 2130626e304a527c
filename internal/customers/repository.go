package customers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/micaaprocofio/ut5-tfu/internal/domain"
)

const (
	table = "customers.customers"

	uniqueViolation = "23505"
)

var ErrEmailTaken = errors.New("email already registered")

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Create relies on the unique index on email to catch registrations that race
// past the handler's lookup.
func (r *CustomerRepository) Create(ctx context.Context, c domain.NewCustomer) (*domain.Customer, error) {
	query, args, err := psql.Insert(table).
		Columns("name", "email").
		Values(c.Name, c.Email).
		Suffix("RETURNING id, name, email").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert customer: %w", err)
	}

	customer := &domain.Customer{}
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&customer.ID, &customer.Name, &customer.Email)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert customer: %w", err)
	}

	return customer, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.getOne(ctx, sq.Eq{"email": email})
}

func (r *CustomerRepository) getOne(ctx context.Context, where sq.Eq) (*domain.Customer, error) {
	query, args, err := psql.Select("id", "name", "email").
		From(table).
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select customer: %w", err)
	}

	customer := &domain.Customer{}
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&customer.ID, &customer.Name, &customer.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return customer, nil
}

func (r *CustomerRepository) Exists(ctx context.Context, id int64) (bool, error) {
	query, args, err := psql.Select("1").
		Prefix("SELECT EXISTS (").
		From(table).
		Where(sq.Eq{"id": id}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build customer exists: %w", err)
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	query, args, err := psql.Select("id", "name", "email").
		From(table).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list customers: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	customers := []domain.Customer{}
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return customers, nil
}
