package catalog

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

const cols = `id, name, generic_name, drug_category, schedule, dosage_form, strength,
	active_ingredient, manufacturer, ppb_registration, ppb_reg_expiry,
	storage_conditions, list_price, active, created_at, updated_at`

func scan(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.GenericName, &p.DrugCategory, &p.Schedule,
		&p.DosageForm, &p.Strength, &p.ActiveIngredient, &p.Manufacturer,
		&p.PPBRegistration, &p.PPBRegExpiry, &p.StorageConditions,
		&p.ListPrice, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Product) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO product (name, generic_name, drug_category, schedule, dosage_form, strength,
			active_ingredient, manufacturer, ppb_registration, ppb_reg_expiry,
			storage_conditions, list_price, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id, created_at, updated_at`,
		p.Name, p.GenericName, p.DrugCategory, p.Schedule, p.DosageForm, p.Strength,
		p.ActiveIngredient, p.Manufacturer, p.PPBRegistration, p.PPBRegExpiry,
		p.StorageConditions, p.ListPrice, p.Active).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Product, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM product WHERE id = $1`, id))
}

func (r *repoPG) GetByIDs(ctx context.Context, ids []int64) ([]*Product, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+cols+` FROM product WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Product
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) GetByPPBRegistration(ctx context.Context, reg string) (*Product, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM product WHERE ppb_registration = $1`, reg))
}

func (r *repoPG) Update(ctx context.Context, p *Product) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE product SET name=$2, generic_name=$3, drug_category=$4, schedule=$5,
			dosage_form=$6, strength=$7, active_ingredient=$8, manufacturer=$9,
			ppb_registration=$10, ppb_reg_expiry=$11, storage_conditions=$12,
			list_price=$13, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.GenericName, p.DrugCategory, p.Schedule,
		p.DosageForm, p.Strength, p.ActiveIngredient, p.Manufacturer,
		p.PPBRegistration, p.PPBRegExpiry, p.StorageConditions, p.ListPrice)
	return err
}

func (r *repoPG) Deactivate(ctx context.Context, id int64) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE product SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *repoPG) Search(ctx context.Context, term, category string, limit, offset int) ([]*Product, int, error) {
	where := `active AND ($1 = '' OR name ILIKE '%' || $1 || '%' OR generic_name ILIKE '%' || $1 || '%')
		AND ($2 = '' OR drug_category = $2)`
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM product WHERE `+where, term, category).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM product WHERE `+where+` ORDER BY name LIMIT $3 OFFSET $4`,
		term, category, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Product
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
