package ledger

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lromerof/comite-agua/internal/apperr"
	"github.com/lromerof/comite-agua/internal/member"
)

// Store abstracts persistence for the ledger.
type Store interface {
	PaidMonths(ctx context.Context, memberID int64, year int) ([]int, error)
	Register(ctx context.Context, memberID int64, total decimal.Decimal, notes string, items []Item) (int64, error)
	History(ctx context.Context, memberID int64) ([]Payment, error)
	Detail(ctx context.Context, paymentID int64) (Detail, error)
}

// FeeSource yields the current monthly tariff. Satisfied by tariff.Service.
type FeeSource interface {
	MonthlyFee(ctx context.Context) (decimal.Decimal, error)
}

// MemberDirectory resolves members. Satisfied by member.Service.
type MemberDirectory interface {
	GetByID(ctx context.Context, id int64) (member.Member, error)
	GetByNumber(ctx context.Context, number int) (member.Member, error)
}

// Config holds payment-policy switches.
type Config struct {
	// AllowCancelled permits payments for members whose status is Cancelado.
	AllowCancelled bool
}

// Service defines the ledger operations exposed to handlers.
type Service interface {
	PaidMonths(ctx context.Context, memberID int64, year int) ([]int, error)
	Register(ctx context.Context, params RegisterParams) (int64, error)
	History(ctx context.Context, memberID int64) ([]Payment, error)
	Detail(ctx context.Context, paymentID int64) (Detail, error)
}

type service struct {
	repo    Store
	fees    FeeSource
	members MemberDirectory
	cfg     Config
}

// NewService creates a Service backed by the provided repository and
// collaborators.
func NewService(repo Store, fees FeeSource, members MemberDirectory, cfg Config) Service {
	return &service{repo: repo, fees: fees, members: members, cfg: cfg}
}

func (s *service) PaidMonths(ctx context.Context, memberID int64, year int) ([]int, error) {
	if year <= 0 {
		return nil, apperr.Validation("year must be positive")
	}
	return s.repo.PaidMonths(ctx, memberID, year)
}

// Register commits one payment covering the requested months and extra
// concepts. The monthly fee is read once and copied into every month item, so
// a tariff change mid-registration cannot split a payment across two rates.
func (s *service) Register(ctx context.Context, params RegisterParams) (int64, error) {
	months, err := normalizeMonths(params.Months)
	if err != nil {
		return 0, err
	}
	if len(months) == 0 && len(params.Extras) == 0 {
		return 0, apperr.Validation("nothing to charge: no months or extra concepts selected")
	}
	if params.Year <= 0 {
		return 0, apperr.Validation("year must be positive")
	}

	m, err := s.members.GetByID(ctx, params.MemberID)
	if err != nil {
		return 0, err
	}
	if m.Status == member.StatusCancelled && !s.cfg.AllowCancelled {
		return 0, apperr.Validation("member %d is cancelled and cannot register payments", m.Number)
	}

	fee, err := s.fees.MonthlyFee(ctx)
	if err != nil {
		return 0, err
	}

	total := decimal.Zero
	items := make([]Item, 0, len(months)+len(params.Extras))

	for _, month := range months {
		mo := month
		items = append(items, Item{
			Concept:  ConceptMonthly,
			Month:    &mo,
			Year:     params.Year,
			Price:    fee,
			Quantity: 1,
		})
		total = total.Add(fee)
	}

	for _, extra := range params.Extras {
		name := strings.TrimSpace(extra.Name)
		if name == "" {
			return 0, apperr.Validation("extra concept name is required")
		}
		if extra.Price.LessThanOrEqual(decimal.Zero) {
			return 0, apperr.Validation("price for concept %q must be greater than zero", name)
		}
		qty := extra.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 0 {
			return 0, apperr.Validation("quantity for concept %q must be positive", name)
		}

		item := Item{
			Concept:  name,
			Year:     params.Year,
			Price:    extra.Price,
			Quantity: qty,
		}
		items = append(items, item)
		total = total.Add(item.Subtotal())
	}

	return s.repo.Register(ctx, params.MemberID, total, strings.TrimSpace(params.Notes), items)
}

func (s *service) History(ctx context.Context, memberID int64) ([]Payment, error) {
	return s.repo.History(ctx, memberID)
}

func (s *service) Detail(ctx context.Context, paymentID int64) (Detail, error) {
	return s.repo.Detail(ctx, paymentID)
}

// normalizeMonths sorts, deduplicates and range-checks the requested months.
func normalizeMonths(months []int) ([]int, error) {
	seen := make(map[int]bool, len(months))
	out := make([]int, 0, len(months))
	for _, m := range months {
		if m < 1 || m > 12 {
			return nil, apperr.Validation("month %d is out of range 1-12", m)
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	sort.Ints(out)
	return out, nil
}
