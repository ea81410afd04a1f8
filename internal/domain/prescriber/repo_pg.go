package prescriber

import (
	"context"

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

const cols = `id, name, license_number, license_expiry, specialization,
	phone, email, facility, verified, active, created_at, updated_at`

func scan(row pgx.Row) (*Prescriber, error) {
	var p Prescriber
	err := row.Scan(&p.ID, &p.Name, &p.LicenseNumber, &p.LicenseExpiry, &p.Specialization,
		&p.Phone, &p.Email, &p.Facility, &p.Verified, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Prescriber) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO prescriber (name, license_number, license_expiry, specialization,
			phone, email, facility, verified, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at, updated_at`,
		p.Name, p.LicenseNumber, p.LicenseExpiry, p.Specialization,
		p.Phone, p.Email, p.Facility, p.Verified, p.Active).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Prescriber, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM prescriber WHERE id = $1`, id))
}

func (r *repoPG) GetByLicense(ctx context.Context, licenseNumber string) (*Prescriber, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM prescriber WHERE license_number = $1`, licenseNumber))
}

func (r *repoPG) Update(ctx context.Context, p *Prescriber) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescriber SET name=$2, license_number=$3, license_expiry=$4, specialization=$5,
			phone=$6, email=$7, facility=$8, verified=$9, active=$10, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.LicenseNumber, p.LicenseExpiry, p.Specialization,
		p.Phone, p.Email, p.Facility, p.Verified, p.Active)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Prescriber, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM prescriber WHERE active`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+` FROM prescriber WHERE active ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Prescriber
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
