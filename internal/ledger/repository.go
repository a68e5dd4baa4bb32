package ledger

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lromerof/comite-agua/internal/apperr"
)

// Item ordering inside a payment: month items first ascending, then one-off
// concepts in insertion order.
const itemOrder = `ORDER BY month IS NULL, month, id`

// Repository handles persistence for the payment ledger.
type Repository struct {
	db *sql.DB
}

func NewRepository(database *sql.DB) *Repository {
	return &Repository{db: database}
}

// PaidMonths returns the distinct months covered by any of the member's line
// items for the given year, ascending. Always recomputed from storage.
func (r *Repository) PaidMonths(ctx context.Context, memberID int64, year int) ([]int, error) {
	const query = `
		SELECT DISTINCT pi.month
		FROM payment_items pi
		JOIN payments p ON pi.payment_id = p.id
		WHERE p.member_id = ? AND pi.year = ? AND pi.month IS NOT NULL
		ORDER BY pi.month`

	rows, err := r.db.QueryContext(ctx, query, memberID, year)
	if err != nil {
		return nil, apperr.Storage("select paid months", err)
	}
	defer rows.Close()

	var months []int
	for rows.Next() {
		var m int
		if err := rows.Scan(&m); err != nil {
			return nil, apperr.Storage("scan paid month", err)
		}
		months = append(months, m)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterate paid months", err)
	}

	return months, nil
}

// Register persists the payment header and every line item in one
// transaction. Before inserting it re-checks, inside the same transaction,
// that none of the requested months is already covered for the member, so a
// stale caller cannot double-book a month.
func (r *Repository) Register(ctx context.Context, memberID int64, total decimal.Decimal, notes string, items []Item) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperr.Storage("begin register payment", err)
	}
	defer tx.Rollback()

	var months []any
	year := 0
	for _, item := range items {
		if item.Month != nil {
			if year == 0 {
				year = item.Year
			}
			months = append(months, *item.Month)
		}
	}

	if len(months) > 0 {
		query := `
			SELECT COUNT(*)
			FROM payment_items pi
			JOIN payments p ON pi.payment_id = p.id
			WHERE p.member_id = ? AND pi.year = ?
			  AND pi.month IN (?` + strings.Repeat(", ?", len(months)-1) + `)`

		args := append([]any{memberID, year}, months...)

		var taken int
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&taken); err != nil {
			return 0, apperr.Storage("check paid months", err)
		}
		if taken > 0 {
			return 0, apperr.Duplicate("one or more requested months are already paid")
		}
	}

	const insertPayment = `INSERT INTO payments (member_id, total, notes) VALUES (?, ?, ?)`

	res, err := tx.ExecContext(ctx, insertPayment, memberID, total, notes)
	if err != nil {
		return 0, apperr.Storage("insert payment", err)
	}

	paymentID, err := res.LastInsertId()
	if err != nil {
		return 0, apperr.Storage("payment insert id", err)
	}

	const insertItem = `
		INSERT INTO payment_items (payment_id, concept, month, year, price, quantity)
		VALUES (?, ?, ?, ?, ?, ?)`

	for _, item := range items {
		var month any
		if item.Month != nil {
			month = *item.Month
		}
		if _, err := tx.ExecContext(ctx, insertItem,
			paymentID, item.Concept, month, item.Year, item.Price, item.Quantity,
		); err != nil {
			return 0, apperr.Storage("insert payment item", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apperr.Storage("commit register payment", err)
	}
	return paymentID, nil
}

// History returns the member's payments most recent first, items attached.
func (r *Repository) History(ctx context.Context, memberID int64) ([]Payment, error) {
	const query = `
		SELECT id, member_id, paid_at, total, notes
		FROM payments
		WHERE member_id = ?
		ORDER BY paid_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, apperr.Storage("select payment history", err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.MemberID, &p.PaidAt, &p.Total, &p.Notes); err != nil {
			return nil, apperr.Storage("scan payment", err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterate payments", err)
	}

	for i := range payments {
		items, err := r.items(ctx, payments[i].ID)
		if err != nil {
			return nil, err
		}
		payments[i].Items = items
	}

	return payments, nil
}

// Detail returns a payment with the member snapshot the receipt needs.
func (r *Repository) Detail(ctx context.Context, paymentID int64) (Detail, error) {
	const query = `
		SELECT p.id, p.member_id, p.paid_at, p.total, p.notes,
		       m.number, m.name, m.address
		FROM payments p
		JOIN members m ON p.member_id = m.id
		WHERE p.id = ?`

	var d Detail
	if err := r.db.QueryRowContext(ctx, query, paymentID).Scan(
		&d.ID, &d.MemberID, &d.PaidAt, &d.Total, &d.Notes,
		&d.MemberNumber, &d.MemberName, &d.MemberAddress,
	); err != nil {
		if err == sql.ErrNoRows {
			return Detail{}, apperr.NotFound("payment %d not found", paymentID)
		}
		return Detail{}, apperr.Storage("select payment detail", err)
	}

	items, err := r.items(ctx, d.ID)
	if err != nil {
		return Detail{}, err
	}
	d.Items = items

	return d, nil
}

func (r *Repository) items(ctx context.Context, paymentID int64) ([]Item, error) {
	query := `
		SELECT id, payment_id, concept, month, year, price, quantity
		FROM payment_items
		WHERE payment_id = ?
		` + itemOrder

	rows, err := r.db.QueryContext(ctx, query, paymentID)
	if err != nil {
		return nil, apperr.Storage("select payment items", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		var month sql.NullInt64
		if err := rows.Scan(
			&item.ID, &item.PaymentID, &item.Concept, &month, &item.Year, &item.Price, &item.Quantity,
		); err != nil {
			return nil, apperr.Storage("scan payment item", err)
		}
		if month.Valid {
			m := int(month.Int64)
			item.Month = &m
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterate payment items", err)
	}

	return items, nil
}
