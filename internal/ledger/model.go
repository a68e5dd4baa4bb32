package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConceptMonthly labels a line item that covers one month of water service at
// the tariff in effect when the payment was registered.
const ConceptMonthly = "Mensualidad"

// Payment is one committed transaction covering any combination of months
// and/or one-off concepts. Headers and items are immutable once written.
type Payment struct {
	ID       int64           `json:"id"`
	MemberID int64           `json:"member_id"`
	PaidAt   time.Time       `json:"paid_at"`
	Total    decimal.Decimal `json:"total"`
	Notes    string          `json:"notes"`
	Items    []Item          `json:"items"`
}

// Item is one charged unit within a payment: a covered month (Month set,
// concept "Mensualidad") or a one-off concept (Month nil). Concept label and
// unit price are copied by value so the row stays meaningful if the tariff or
// the concept catalog changes later.
type Item struct {
	ID        int64           `json:"id"`
	PaymentID int64           `json:"payment_id"`
	Concept   string          `json:"concept"`
	Month     *int            `json:"month,omitempty"`
	Year      int             `json:"year"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is the charged amount for this item.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ExtraCharge is a one-off concept included in a registration request.
type ExtraCharge struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// RegisterParams describes a payment to commit.
type RegisterParams struct {
	MemberID int64
	Months   []int
	Year     int
	Extras   []ExtraCharge
	Notes    string
}

// Detail is a payment joined with the member snapshot required by the
// receipt renderer.
type Detail struct {
	Payment
	MemberNumber  int    `json:"member_number"`
	MemberName    string `json:"member_name"`
	MemberAddress string `json:"member_address"`
}
