package tariff

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lromerof/comite-agua/internal/apperr"
	"github.com/lromerof/comite-agua/internal/db"
)

// Repository handles persistence for settings and charge concepts.
type Repository struct {
	db *sql.DB
}

func NewRepository(database *sql.DB) *Repository {
	return &Repository{db: database}
}

func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM settings WHERE key = ?`

	var value string
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", apperr.NotFound("setting %q not found", key)
		}
		return "", apperr.Storage("select setting", err)
	}
	return value, nil
}

func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO settings (key, value)
		VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return apperr.Storage("upsert setting", err)
	}
	return nil
}

func (r *Repository) ListConcepts(ctx context.Context, activeOnly bool) ([]Concept, error) {
	query := `SELECT id, name, price, active, created_at FROM concepts`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperr.Storage("list concepts", err)
	}
	defer rows.Close()

	var concepts []Concept
	for rows.Next() {
		var c Concept
		if err := rows.Scan(&c.ID, &c.Name, &c.Price, &c.Active, &c.CreatedAt); err != nil {
			return nil, apperr.Storage("scan concept", err)
		}
		concepts = append(concepts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterate concepts", err)
	}

	return concepts, nil
}

func (r *Repository) GetConcept(ctx context.Context, id int64) (Concept, error) {
	const query = `SELECT id, name, price, active, created_at FROM concepts WHERE id = ?`

	var c Concept
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Price, &c.Active, &c.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return Concept{}, apperr.NotFound("concept %d not found", id)
		}
		return Concept{}, apperr.Storage("select concept", err)
	}
	return c, nil
}

func (r *Repository) CreateConcept(ctx context.Context, params CreateConceptParams) (Concept, error) {
	const query = `INSERT INTO concepts (name, price) VALUES (?, ?)`

	res, err := r.db.ExecContext(ctx, query, params.Name, params.Price)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Concept{}, apperr.Duplicate("concept %q already exists", params.Name)
		}
		return Concept{}, apperr.Storage("insert concept", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Concept{}, apperr.Storage("concept insert id", err)
	}

	return r.GetConcept(ctx, id)
}

func (r *Repository) UpdateConcept(ctx context.Context, params UpdateConceptParams) (Concept, error) {
	setParts := []string{}
	args := []any{}

	if params.Name != nil {
		setParts = append(setParts, "name = ?")
		args = append(args, *params.Name)
	}
	if params.Price != nil {
		setParts = append(setParts, "price = ?")
		args = append(args, *params.Price)
	}
	if params.Active != nil {
		setParts = append(setParts, "active = ?")
		args = append(args, *params.Active)
	}

	if len(setParts) == 0 {
		return r.GetConcept(ctx, params.ID)
	}

	args = append(args, params.ID)
	query := fmt.Sprintf(`UPDATE concepts SET %s WHERE id = ?`, strings.Join(setParts, ", "))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if db.IsUniqueViolation(err) && params.Name != nil {
			return Concept{}, apperr.Duplicate("concept %q already exists", *params.Name)
		}
		return Concept{}, apperr.Storage("update concept", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return Concept{}, apperr.Storage("update concept rows affected", err)
	}
	if affected == 0 {
		return Concept{}, apperr.NotFound("concept %d not found", params.ID)
	}

	return r.GetConcept(ctx, params.ID)
}
