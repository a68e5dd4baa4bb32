package member

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lromerof/comite-agua/internal/apperr"
	"github.com/lromerof/comite-agua/internal/db"
)

const memberColumns = `id, number, name, address, phone, email, status, registered_at`

// Repository handles persistence for members.
type Repository struct {
	db *sql.DB
}

func NewRepository(database *sql.DB) *Repository {
	return &Repository{db: database}
}

// Create inserts a member. When params.Number is nil the next sequential
// account number is assigned inside the same transaction, so the read of the
// current maximum and the insert cannot interleave with another registration.
func (r *Repository) Create(ctx context.Context, params CreateParams) (Member, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Member{}, apperr.Storage("begin create member", err)
	}
	defer tx.Rollback()

	number := 0
	if params.Number != nil {
		number = *params.Number
	} else {
		const nextQuery = `SELECT COALESCE(MAX(number), 0) + 1 FROM members`
		if err := tx.QueryRowContext(ctx, nextQuery).Scan(&number); err != nil {
			return Member{}, apperr.Storage("next member number", err)
		}
	}

	const insertQuery = `
		INSERT INTO members (number, name, address, phone, email)
		VALUES (?, ?, ?, ?, ?)`

	res, err := tx.ExecContext(ctx, insertQuery,
		number, params.Name, params.Address, params.Phone, params.Email)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Member{}, apperr.Duplicate("member number %d already exists", number)
		}
		return Member{}, apperr.Storage("insert member", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Member{}, apperr.Storage("member insert id", err)
	}

	var m Member
	selectQuery := fmt.Sprintf(`SELECT %s FROM members WHERE id = ?`, memberColumns)
	if err := tx.QueryRowContext(ctx, selectQuery, id).Scan(
		&m.ID, &m.Number, &m.Name, &m.Address, &m.Phone, &m.Email, &m.Status, &m.RegisteredAt,
	); err != nil {
		return Member{}, apperr.Storage("select created member", err)
	}

	if err := tx.Commit(); err != nil {
		return Member{}, apperr.Storage("commit create member", err)
	}
	return m, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM members WHERE id = ?`, memberColumns)

	var m Member
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.Number, &m.Name, &m.Address, &m.Phone, &m.Email, &m.Status, &m.RegisteredAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return Member{}, apperr.NotFound("member %d not found", id)
		}
		return Member{}, apperr.Storage("select member", err)
	}
	return m, nil
}

func (r *Repository) GetByNumber(ctx context.Context, number int) (Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM members WHERE number = ?`, memberColumns)

	var m Member
	if err := r.db.QueryRowContext(ctx, query, number).Scan(
		&m.ID, &m.Number, &m.Name, &m.Address, &m.Phone, &m.Email, &m.Status, &m.RegisteredAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return Member{}, apperr.NotFound("member number %d not found", number)
		}
		return Member{}, apperr.Storage("select member by number", err)
	}
	return m, nil
}

// SearchByName matches the fragment case-insensitively anywhere in the name.
func (r *Repository) SearchByName(ctx context.Context, fragment string) ([]Member, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM members
		WHERE name LIKE ? COLLATE NOCASE
		ORDER BY name`, memberColumns)

	rows, err := r.db.QueryContext(ctx, query, "%"+fragment+"%")
	if err != nil {
		return nil, apperr.Storage("search members", err)
	}
	defer rows.Close()

	return scanMembers(rows)
}

func (r *Repository) List(ctx context.Context, activeOnly bool) ([]Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM members`, memberColumns)
	if activeOnly {
		query += ` WHERE status = 'Activo'`
	}
	query += ` ORDER BY number`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperr.Storage("list members", err)
	}
	defer rows.Close()

	return scanMembers(rows)
}

func (r *Repository) Update(ctx context.Context, params UpdateParams) (Member, error) {
	setParts := []string{}
	args := []any{}

	if params.Name != nil {
		setParts = append(setParts, "name = ?")
		args = append(args, *params.Name)
	}
	if params.Address != nil {
		setParts = append(setParts, "address = ?")
		args = append(args, *params.Address)
	}
	if params.Phone != nil {
		setParts = append(setParts, "phone = ?")
		args = append(args, *params.Phone)
	}
	if params.Email != nil {
		setParts = append(setParts, "email = ?")
		args = append(args, *params.Email)
	}
	if params.Status != nil {
		setParts = append(setParts, "status = ?")
		args = append(args, *params.Status)
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, params.ID)
	}

	args = append(args, params.ID)
	query := fmt.Sprintf(`UPDATE members SET %s WHERE id = ?`, strings.Join(setParts, ", "))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return Member{}, apperr.Storage("update member", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return Member{}, apperr.Storage("update member rows affected", err)
	}
	if affected == 0 {
		return Member{}, apperr.NotFound("member %d not found", params.ID)
	}

	return r.GetByID(ctx, params.ID)
}

func scanMembers(rows *sql.Rows) ([]Member, error) {
	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(
			&m.ID, &m.Number, &m.Name, &m.Address, &m.Phone, &m.Email, &m.Status, &m.RegisteredAt,
		); err != nil {
			return nil, apperr.Storage("scan member", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterate members", err)
	}

	return members, nil
}
