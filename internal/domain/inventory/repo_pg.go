package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/softlink/pharmacy-pos/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cols = `l.id, l.product_id, p.name, l.lot_number, l.quantity,
	l.expiry_date, l.manufacturing_date, l.received_date, l.created_at, l.updated_at`

func scan(row pgx.Row) (*Lot, error) {
	var l Lot
	err := row.Scan(&l.ID, &l.ProductID, &l.ProductName, &l.LotNumber, &l.Quantity,
		&l.ExpiryDate, &l.ManufacturingDate, &l.ReceivedDate, &l.CreatedAt, &l.UpdatedAt)
	return &l, err
}

func (r *repoPG) Create(ctx context.Context, l *Lot) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO stock_lot (product_id, lot_number, quantity, expiry_date, manufacturing_date, received_date)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at, updated_at`,
		l.ProductID, l.LotNumber, l.Quantity, l.ExpiryDate, l.ManufacturingDate, l.ReceivedDate).
		Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Lot, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `
		SELECT `+cols+` FROM stock_lot l JOIN product p ON p.id = l.product_id
		WHERE l.id = $1`, id))
}

func (r *repoPG) LotsForProduct(ctx context.Context, productID int64) ([]*Lot, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+` FROM stock_lot l JOIN product p ON p.id = l.product_id
		WHERE l.product_id = $1 AND l.quantity > 0
		ORDER BY l.expiry_date NULLS LAST, l.received_date`, productID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repoPG) ExpiringBefore(ctx context.Context, cutoff time.Time) ([]*Lot, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+` FROM stock_lot l JOIN product p ON p.id = l.product_id
		WHERE l.quantity > 0 AND l.expiry_date IS NOT NULL AND l.expiry_date <= $1
		ORDER BY l.expiry_date`, cutoff)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repoPG) AdjustQuantity(ctx context.Context, id int64, delta float64) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE stock_lot SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1 AND quantity + $2 >= 0`, id, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lot %d: insufficient stock for adjustment %v", id, delta)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Lot, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM stock_lot`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+` FROM stock_lot l JOIN product p ON p.id = l.product_id
		ORDER BY l.expiry_date NULLS LAST LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := collect(rows)
	return items, total, err
}

func collect(rows pgx.Rows) ([]*Lot, error) {
	defer rows.Close()
	var items []*Lot
	for rows.Next() {
		l, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}
