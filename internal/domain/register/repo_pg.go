package register

import (
	"context"
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

const cols = `id, date, order_uid, product_id, product_name, schedule, quantity,
	patient_name, patient_id_number, patient_address,
	prescriber_name, prescriber_license, prescription_number,
	pharmacist_id, pharmacist_name, created_at`

func scan(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.Date, &e.OrderUID, &e.ProductID, &e.ProductName, &e.Schedule, &e.Quantity,
		&e.PatientName, &e.PatientIDNumber, &e.PatientAddress,
		&e.PrescriberName, &e.PrescriberLicense, &e.PrescriptionNumber,
		&e.PharmacistID, &e.PharmacistName, &e.CreatedAt)
	return &e, err
}

func (r *repoPG) Create(ctx context.Context, e *Entry) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO controlled_register (date, order_uid, product_id, product_name, schedule, quantity,
			patient_name, patient_id_number, patient_address,
			prescriber_name, prescriber_license, prescription_number,
			pharmacist_id, pharmacist_name)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id, created_at`,
		e.Date, e.OrderUID, e.ProductID, e.ProductName, e.Schedule, e.Quantity,
		e.PatientName, e.PatientIDNumber, e.PatientAddress,
		e.PrescriberName, e.PrescriberLicense, e.PrescriptionNumber,
		e.PharmacistID, e.PharmacistName).
		Scan(&e.ID, &e.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Entry, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM controlled_register WHERE id = $1`, id))
}

func (r *repoPG) ListByPeriod(ctx context.Context, from, to time.Time, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM controlled_register WHERE date >= $1 AND date < $2`, from, to).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+` FROM controlled_register
		WHERE date >= $1 AND date < $2
		ORDER BY date, id LIMIT $3 OFFSET $4`, from, to, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := collect(rows)
	return items, total, err
}

func (r *repoPG) ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM controlled_register WHERE product_id = $1`, productID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+` FROM controlled_register
		WHERE product_id = $1 ORDER BY date, id LIMIT $2 OFFSET $3`, productID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := collect(rows)
	return items, total, err
}

func collect(rows pgx.Rows) ([]*Entry, error) {
	defer rows.Close()
	var items []*Entry
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
