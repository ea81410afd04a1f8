package order

import (
	"context"
	"errors"

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

const cols = `o.id, o.uid, o.session_id, o.amount_total,
	o.patient_id, o.patient_name, o.patient_phone, o.prescription_id,
	o.insurance_claim, o.insurance_company, o.insurance_number,
	o.insurance_amount, o.patient_copay,
	o.approved_by_pharmacist, o.pharmacist_id, o.paid_at`

func scan(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UID, &o.SessionID, &o.AmountTotal,
		&o.PatientID, &o.PatientName, &o.PatientPhone, &o.PrescriptionID,
		&o.InsuranceClaim, &o.InsuranceCompany, &o.InsuranceNumber,
		&o.InsuranceAmount, &o.PatientCopay,
		&o.ApprovedByPharmacist, &o.PharmacistID, &o.PaidAt)
	return &o, err
}

func (r *repoPG) Create(ctx context.Context, o *Order) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		err := r.conn(ctx).QueryRow(ctx, `
			INSERT INTO pos_order (uid, session_id, amount_total,
				patient_id, patient_name, patient_phone, prescription_id,
				insurance_claim, insurance_company, insurance_number,
				insurance_amount, patient_copay,
				approved_by_pharmacist, pharmacist_id, paid_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
			RETURNING id`,
			o.UID, o.SessionID, o.AmountTotal,
			o.PatientID, o.PatientName, o.PatientPhone, o.PrescriptionID,
			o.InsuranceClaim, o.InsuranceCompany, o.InsuranceNumber,
			o.InsuranceAmount, o.PatientCopay,
			o.ApprovedByPharmacist, o.PharmacistID, o.PaidAt).Scan(&o.ID)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrDuplicate
			}
			return err
		}
		for _, l := range o.Lines {
			l.OrderID = o.ID
			err := r.conn(ctx).QueryRow(ctx, `
				INSERT INTO pos_order_line (order_id, product_id, product_name,
					quantity, price, controlled, schedule, lot_id)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
				RETURNING id`,
				l.OrderID, l.ProductID, l.ProductName,
				l.Quantity, l.Price, l.Controlled, l.Schedule, l.LotID).Scan(&l.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repoPG) loadLines(ctx context.Context, o *Order) error {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, price,
			controlled, schedule, lot_id
		FROM pos_order_line WHERE order_id = $1 ORDER BY id`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName,
			&l.Quantity, &l.Price, &l.Controlled, &l.Schedule, &l.LotID); err != nil {
			return err
		}
		o.Lines = append(o.Lines, &l)
	}
	return rows.Err()
}

func (r *repoPG) getOne(ctx context.Context, query string, arg interface{}) (*Order, error) {
	o, err := scan(r.conn(ctx).QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.loadLines(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Order, error) {
	return r.getOne(ctx, `SELECT `+cols+` FROM pos_order o WHERE o.id = $1`, id)
}

func (r *repoPG) GetByUID(ctx context.Context, uid string) (*Order, error) {
	return r.getOne(ctx, `SELECT `+cols+` FROM pos_order o WHERE o.uid = $1`, uid)
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Order, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM pos_order o ORDER BY o.paid_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

func (r *repoPG) ListBySession(ctx context.Context, sessionID int64, limit, offset int) ([]*Order, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM pos_order o WHERE o.session_id = $1
		 ORDER BY o.paid_at DESC LIMIT $2 OFFSET $3`, sessionID, limit, offset)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

func (r *repoPG) Count(ctx context.Context) (int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM pos_order`).Scan(&total)
	return total, err
}

func (r *repoPG) collect(ctx context.Context, rows pgx.Rows) ([]*Order, error) {
	var items []*Order
	for rows.Next() {
		o, err := scan(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		items = append(items, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range items {
		if err := r.loadLines(ctx, o); err != nil {
			return nil, err
		}
	}
	return items, nil
}
