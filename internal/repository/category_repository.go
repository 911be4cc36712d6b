package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CategoryRepository looks up routing categories.
type CategoryRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetByName(ctx context.Context, name string) (*domain.Category, error)
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository builds the repository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	const query = `SELECT id, name, created_at FROM categories WHERE id=$1`
	var category domain.Category
	if err := r.pool.QueryRow(ctx, query, id).Scan(&category.ID, &category.Name, &category.CreatedAt); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	const query = `SELECT id, name, created_at FROM categories WHERE name=$1`
	var category domain.Category
	if err := r.pool.QueryRow(ctx, query, name).Scan(&category.ID, &category.Name, &category.CreatedAt); err != nil {
		return nil, err
	}
	return &category, nil
}

// CustomerRepository looks up customers tickets are opened for.
type CustomerRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Customer, error)
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository builds the repository.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

func (r *customerRepository) GetByName(ctx context.Context, name string) (*domain.Customer, error) {
	const query = `SELECT id, name, email, created_at FROM customers WHERE name=$1`
	var customer domain.Customer
	if err := r.pool.QueryRow(ctx, query, name).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &customer, nil
}
