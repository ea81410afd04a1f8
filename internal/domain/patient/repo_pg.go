package patient

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

const cols = `id, first_name, middle_name, last_name, date_of_birth, gender,
	phone, email, id_number, address, blood_group,
	allergies, chronic_conditions, current_medications,
	has_insurance, insurance_company, insurance_number, insurance_expiry,
	emergency_contact_name, emergency_contact_phone,
	active, notes, created_at, updated_at`

func scan(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.MiddleName, &p.LastName, &p.DateOfBirth, &p.Gender,
		&p.Phone, &p.Email, &p.IDNumber, &p.Address, &p.BloodGroup,
		&p.Allergies, &p.ChronicConditions, &p.CurrentMedications,
		&p.HasInsurance, &p.InsuranceCompany, &p.InsuranceNumber, &p.InsuranceExpiry,
		&p.EmergencyContactName, &p.EmergencyContactPhone,
		&p.Active, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient (first_name, middle_name, last_name, date_of_birth, gender,
			phone, email, id_number, address, blood_group,
			allergies, chronic_conditions, current_medications,
			has_insurance, insurance_company, insurance_number, insurance_expiry,
			emergency_contact_name, emergency_contact_phone, active, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		RETURNING id, created_at, updated_at`,
		p.FirstName, p.MiddleName, p.LastName, p.DateOfBirth, p.Gender,
		p.Phone, p.Email, p.IDNumber, p.Address, p.BloodGroup,
		p.Allergies, p.ChronicConditions, p.CurrentMedications,
		p.HasInsurance, p.InsuranceCompany, p.InsuranceNumber, p.InsuranceExpiry,
		p.EmergencyContactName, p.EmergencyContactPhone, p.Active, p.Notes).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) GetByIDNumber(ctx context.Context, idNumber string) (*Patient, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM patient WHERE id_number = $1`, idNumber))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET first_name=$2, middle_name=$3, last_name=$4, date_of_birth=$5,
			gender=$6, phone=$7, email=$8, id_number=$9, address=$10, blood_group=$11,
			allergies=$12, chronic_conditions=$13, current_medications=$14,
			has_insurance=$15, insurance_company=$16, insurance_number=$17, insurance_expiry=$18,
			emergency_contact_name=$19, emergency_contact_phone=$20, notes=$21, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.MiddleName, p.LastName, p.DateOfBirth,
		p.Gender, p.Phone, p.Email, p.IDNumber, p.Address, p.BloodGroup,
		p.Allergies, p.ChronicConditions, p.CurrentMedications,
		p.HasInsurance, p.InsuranceCompany, p.InsuranceNumber, p.InsuranceExpiry,
		p.EmergencyContactName, p.EmergencyContactPhone, p.Notes)
	return err
}

func (r *repoPG) Deactivate(ctx context.Context, id int64) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE patient SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *repoPG) Lookup(ctx context.Context, term string, limit int) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+` FROM patient
		WHERE active
		  AND (first_name || ' ' || COALESCE(middle_name || ' ', '') || last_name ILIKE '%' || $1 || '%'
		   OR phone ILIKE '%' || $1 || '%'
		   OR id_number ILIKE '%' || $1 || '%')
		ORDER BY last_name, first_name
		LIMIT $2`, term, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient WHERE active`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+` FROM patient WHERE active
		ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
