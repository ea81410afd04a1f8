package prescription

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

const cols = `rx.id, rx.number, rx.patient_id, pt.first_name || ' ' || pt.last_name,
	rx.prescriber_id, pb.name, rx.date, rx.valid_until, rx.state,
	rx.diagnosis, rx.notes, rx.verified, rx.verified_by, rx.verified_at,
	rx.dispensed_by, rx.dispensed_at, rx.created_at, rx.updated_at`

const fromClause = ` FROM prescription rx
	JOIN patient pt ON pt.id = rx.patient_id
	JOIN prescriber pb ON pb.id = rx.prescriber_id`

func scan(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.Number, &p.PatientID, &p.PatientName,
		&p.PrescriberID, &p.PrescriberName, &p.Date, &p.ValidUntil, &p.State,
		&p.Diagnosis, &p.Notes, &p.Verified, &p.VerifiedBy, &p.VerifiedAt,
		&p.DispensedBy, &p.DispensedAt, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		err := r.conn(ctx).QueryRow(ctx, `
			INSERT INTO prescription (number, patient_id, prescriber_id, date, valid_until,
				state, diagnosis, notes)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			RETURNING id, created_at, updated_at`,
			p.Number, p.PatientID, p.PrescriberID, p.Date, p.ValidUntil,
			p.State, p.Diagnosis, p.Notes).
			Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return err
		}
		for _, l := range p.Lines {
			l.PrescriptionID = p.ID
			err := r.conn(ctx).QueryRow(ctx, `
				INSERT INTO prescription_line (prescription_id, product_id, dosage, frequency,
					duration_days, quantity_prescribed, quantity_dispensed)
				VALUES ($1,$2,$3,$4,$5,$6,0)
				RETURNING id`,
				l.PrescriptionID, l.ProductID, l.Dosage, l.Frequency,
				l.DurationDays, l.QuantityPrescribed).Scan(&l.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repoPG) loadLines(ctx context.Context, p *Prescription) error {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT l.id, l.prescription_id, l.product_id, pr.name, l.dosage, l.frequency,
			l.duration_days, l.quantity_prescribed, l.quantity_dispensed
		FROM prescription_line l JOIN product pr ON pr.id = l.product_id
		WHERE l.prescription_id = $1 ORDER BY l.id`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.PrescriptionID, &l.ProductID, &l.ProductName,
			&l.Dosage, &l.Frequency, &l.DurationDays,
			&l.QuantityPrescribed, &l.QuantityDispensed); err != nil {
			return err
		}
		p.Lines = append(p.Lines, &l)
	}
	return rows.Err()
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Prescription, error) {
	p, err := scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+fromClause+` WHERE rx.id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repoPG) GetByNumber(ctx context.Context, number string) (*Prescription, error) {
	p, err := scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+fromClause+` WHERE rx.number = $1`, number))
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repoPG) Update(ctx context.Context, p *Prescription) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescription SET state=$2, diagnosis=$3, notes=$4,
			verified=$5, verified_by=$6, verified_at=$7,
			dispensed_by=$8, dispensed_at=$9, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.State, p.Diagnosis, p.Notes,
		p.Verified, p.VerifiedBy, p.VerifiedAt,
		p.DispensedBy, p.DispensedAt)
	return err
}

func (r *repoPG) UpdateLine(ctx context.Context, l *Line) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescription_line SET quantity_dispensed = $2 WHERE id = $1`,
		l.ID, l.QuantityDispensed)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Prescription, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM prescription WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+fromClause+` WHERE rx.patient_id = $1 ORDER BY rx.date DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(ctx, rows)
	return items, total, err
}

func (r *repoPG) List(ctx context.Context, state string, limit, offset int) ([]*Prescription, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM prescription WHERE $1 = '' OR state = $1`, state).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+fromClause+` WHERE $1 = '' OR rx.state = $1
		 ORDER BY rx.date DESC LIMIT $2 OFFSET $3`, state, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(ctx, rows)
	return items, total, err
}

func (r *repoPG) collect(ctx context.Context, rows pgx.Rows) ([]*Prescription, error) {
	var items []*Prescription
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		items = append(items, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range items {
		if err := r.loadLines(ctx, p); err != nil {
			return nil, err
		}
	}
	return items, nil
}
