package ledger

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"

	"github.com/lromerof/comite-agua/internal/apperr"
)

func month(m int) *int { return &m }

func TestRepository_Register(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewRepository(db)

	items := []Item{
		{Concept: ConceptMonthly, Month: month(1), Year: 2024, Price: decimal.NewFromInt(50), Quantity: 1},
		{Concept: ConceptMonthly, Month: month(2), Year: 2024, Price: decimal.NewFromInt(50), Quantity: 1},
		{Concept: "Toma Nueva", Year: 2024, Price: decimal.NewFromInt(500), Quantity: 1},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(1), 2024, 1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(int64(1), "600", "").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec("INSERT INTO payment_items").
		WithArgs(int64(9), ConceptMonthly, 1, 2024, "50", 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO payment_items").
		WithArgs(int64(9), ConceptMonthly, 2, 2024, "50", 1).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("INSERT INTO payment_items").
		WithArgs(int64(9), "Toma Nueva", nil, 2024, "500", 1).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	id, err := repo.Register(context.Background(), 1, decimal.NewFromInt(600), "", items)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if id != 9 {
		t.Fatalf("expected payment id 9, got %d", id)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRepository_RegisterOneOffItemFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewRepository(db)

	// The overlap guard must take its year from the month item even when a
	// one-off item happens to come first.
	items := []Item{
		{Concept: "Toma Nueva", Year: 2023, Price: decimal.NewFromInt(500), Quantity: 1},
		{Concept: ConceptMonthly, Month: month(5), Year: 2024, Price: decimal.NewFromInt(50), Quantity: 1},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(1), 2024, 5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(int64(1), "550", "").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("INSERT INTO payment_items").
		WithArgs(int64(3), "Toma Nueva", nil, 2023, "500", 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO payment_items").
		WithArgs(int64(3), ConceptMonthly, 5, 2024, "50", 1).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	if _, err := repo.Register(context.Background(), 1, decimal.NewFromInt(550), "", items); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRepository_RegisterMonthTaken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewRepository(db)

	items := []Item{
		{Concept: ConceptMonthly, Month: month(2), Year: 2024, Price: decimal.NewFromInt(50), Quantity: 1},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(1), 2024, 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err = repo.Register(context.Background(), 1, decimal.NewFromInt(50), "", items)
	if !apperr.IsKind(err, apperr.KindDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRepository_PaidMonths(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewRepository(db)

	rows := sqlmock.NewRows([]string{"month"}).AddRow(1).AddRow(2).AddRow(5)
	mock.ExpectQuery("SELECT DISTINCT pi.month").
		WithArgs(int64(3), 2024).
		WillReturnRows(rows)

	months, err := repo.PaidMonths(context.Background(), 3, 2024)
	if err != nil {
		t.Fatalf("PaidMonths returned error: %v", err)
	}
	if !reflect.DeepEqual(months, []int{1, 2, 5}) {
		t.Fatalf("expected [1 2 5], got %v", months)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRepository_DetailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery("SELECT p.id").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.Detail(context.Background(), 42); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRepository_Detail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewRepository(db)

	paidAt := time.Date(2024, time.March, 10, 12, 30, 0, 0, time.UTC)

	header := sqlmock.NewRows([]string{
		"id", "member_id", "paid_at", "total", "notes", "number", "name", "address",
	}).AddRow(9, 1, paidAt, "150", "", 7, "Ana García", "Calle Hidalgo 12")
	mock.ExpectQuery("SELECT p.id").WithArgs(int64(9)).WillReturnRows(header)

	itemRows := sqlmock.NewRows([]string{
		"id", "payment_id", "concept", "month", "year", "price", "quantity",
	}).
		AddRow(1, 9, ConceptMonthly, 1, 2024, "50", 1).
		AddRow(2, 9, ConceptMonthly, 2, 2024, "50", 1).
		AddRow(3, 9, "Multa", nil, 2024, "50", 1)
	mock.ExpectQuery("SELECT id, payment_id, concept").WithArgs(int64(9)).WillReturnRows(itemRows)

	detail, err := repo.Detail(context.Background(), 9)
	if err != nil {
		t.Fatalf("Detail returned error: %v", err)
	}
	if detail.MemberNumber != 7 || detail.MemberName != "Ana García" {
		t.Fatalf("unexpected member snapshot: %+v", detail)
	}
	if len(detail.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(detail.Items))
	}
	if detail.Items[2].Month != nil {
		t.Fatalf("expected one-off item without month, got %v", *detail.Items[2].Month)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
