package staff

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

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// -- Users --

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

const userCols = `id, name, pin, roles, active, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.PIN, &u.Roles, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	return &u, err
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO staff_user (name, pin, roles, active)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at, updated_at`,
		u.Name, u.PIN, u.Roles, u.Active).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *userRepoPG) GetByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userCols+` FROM staff_user WHERE id = $1`, id))
}

func (r *userRepoPG) Update(ctx context.Context, u *User) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE staff_user SET name=$2, pin=$3, roles=$4, active=$5, updated_at=NOW()
		WHERE id = $1`, u.ID, u.Name, u.PIN, u.Roles, u.Active)
	return err
}

func (r *userRepoPG) FindByPINAndRole(ctx context.Context, pin, role string) ([]*User, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+userCols+` FROM staff_user
		WHERE active AND pin = $1 AND $2 = ANY(roles)`, pin, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

func (r *userRepoPG) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM staff_user WHERE active`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+userCols+` FROM staff_user WHERE active ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, rows.Err()
}

// -- Sessions --

type sessionRepoPG struct{ pool *pgxpool.Pool }

func NewSessionRepoPG(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepoPG{pool: pool}
}

const sessionCols = `s.id, s.name, s.state, s.opened_by_id, s.pharmacist_id, u.name,
	s.opened_at, s.closed_at, s.prescription_sales, s.controlled_sales`

const sessionFrom = ` FROM pos_session s LEFT JOIN staff_user u ON u.id = s.pharmacist_id`

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.Name, &s.State, &s.OpenedByID, &s.PharmacistID, &s.PharmacistName,
		&s.OpenedAt, &s.ClosedAt, &s.PrescriptionSales, &s.ControlledSales)
	return &s, err
}

func (r *sessionRepoPG) Create(ctx context.Context, s *Session) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO pos_session (name, state, opened_by_id, pharmacist_id, opened_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`,
		s.Name, s.State, s.OpenedByID, s.PharmacistID, s.OpenedAt).Scan(&s.ID)
}

func (r *sessionRepoPG) GetByID(ctx context.Context, id int64) (*Session, error) {
	return scanSession(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+sessionCols+sessionFrom+` WHERE s.id = $1`, id))
}

func (r *sessionRepoPG) GetOpen(ctx context.Context) (*Session, error) {
	return scanSession(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+sessionCols+sessionFrom+` WHERE s.state = 'open' ORDER BY s.opened_at DESC LIMIT 1`))
}

func (r *sessionRepoPG) Update(ctx context.Context, s *Session) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE pos_session SET state=$2, pharmacist_id=$3, closed_at=$4 WHERE id = $1`,
		s.ID, s.State, s.PharmacistID, s.ClosedAt)
	return err
}

func (r *sessionRepoPG) IncrementCounters(ctx context.Context, id int64, prescription, controlled int) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE pos_session SET prescription_sales = prescription_sales + $2,
			controlled_sales = controlled_sales + $3
		WHERE id = $1`, id, prescription, controlled)
	return err
}
