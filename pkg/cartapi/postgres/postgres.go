// Package postgres implements a PostgreSQL cart line repository.
package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"cartflow/pkg/cart"
	"cartflow/pkg/cartapi"
)

// Repository persists cart lines in PostgreSQL. The caller must ensure the
// database has a cart_lines table:
//
//	CREATE TABLE IF NOT EXISTS cart_lines (
//	    pos        BIGSERIAL PRIMARY KEY,
//	    id         TEXT UNIQUE NOT NULL,
//	    owner      TEXT NOT NULL,
//	    name       TEXT NOT NULL,
//	    unit_price BIGINT NOT NULL,
//	    category   TEXT NOT NULL DEFAULT '',
//	    images     TEXT[] NOT NULL DEFAULT '{}',
//	    stock      INT NOT NULL,
//	    quantity   INT NOT NULL
//	);
type Repository struct {
	db *sql.DB
}

// New creates a PostgreSQL repository.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const columns = "id, name, unit_price, category, images, stock, quantity"

// List fetches the owner's cart lines in insertion order.
func (r *Repository) List(ctx context.Context, owner string) ([]cart.LineItem, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+columns+" FROM cart_lines WHERE owner=$1 ORDER BY pos", owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []cart.LineItem
	for rows.Next() {
		li, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, li)
	}
	return lines, rows.Err()
}

// Get retrieves one cart line.
func (r *Repository) Get(ctx context.Context, owner, id string) (cart.LineItem, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+columns+" FROM cart_lines WHERE owner=$1 AND id=$2", owner, id)
	li, err := scanLine(row)
	if err == sql.ErrNoRows {
		return cart.LineItem{}, cartapi.ErrNotFound
	}
	return li, err
}

// Add inserts a line, assigning an id when the caller left it empty.
func (r *Repository) Add(ctx context.Context, owner string, li cart.LineItem) (cart.LineItem, error) {
	if li.ID == "" {
		li.ID = uuid.NewString()
	}
	if li.Quantity > li.Product.Stock {
		return cart.LineItem{}, cartapi.ErrStock
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO cart_lines (id, owner, name, unit_price, category, images, stock, quantity) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)",
		li.ID, owner, li.Product.Name, li.Product.UnitPrice, li.Product.Category,
		pq.Array(li.Product.Images), li.Product.Stock, li.Quantity)
	if err != nil {
		return cart.LineItem{}, err
	}
	return li, nil
}

// SetQuantity updates one line after the authoritative stock check. A
// quantity of zero or less removes the line.
func (r *Repository) SetQuantity(ctx context.Context, owner, id string, quantity int) (cart.LineItem, error) {
	if quantity <= 0 {
		li, err := r.Get(ctx, owner, id)
		if err != nil {
			return cart.LineItem{}, err
		}
		if err := r.Delete(ctx, owner, id); err != nil {
			return cart.LineItem{}, err
		}
		li.Quantity = 0
		return li, nil
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE cart_lines SET quantity=$3 WHERE owner=$1 AND id=$2 AND stock >= $3",
		owner, id, quantity)
	if err != nil {
		return cart.LineItem{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish a missing line from a failed stock check.
		if _, err := r.Get(ctx, owner, id); err != nil {
			return cart.LineItem{}, err
		}
		return cart.LineItem{}, cartapi.ErrStock
	}
	return r.Get(ctx, owner, id)
}

// Delete removes one line.
func (r *Repository) Delete(ctx context.Context, owner, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cart_lines WHERE owner=$1 AND id=$2", owner, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return cartapi.ErrNotFound
	}
	return nil
}

// Clear removes every line for the owner.
func (r *Repository) Clear(ctx context.Context, owner string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM cart_lines WHERE owner=$1", owner)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLine(s scanner) (cart.LineItem, error) {
	var li cart.LineItem
	err := s.Scan(&li.ID, &li.Product.Name, &li.Product.UnitPrice, &li.Product.Category,
		pq.Array(&li.Product.Images), &li.Product.Stock, &li.Quantity)
	return li, err
}
