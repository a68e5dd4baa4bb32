package tariff

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settings keys. The desktop app kept all process-wide configuration in one
// key-value table; committee metadata and the access PIN live there too.
const (
	KeyMonthlyFee         = "monthly_fee"
	KeyAccessPIN          = "access_pin"
	KeyCommitteeName      = "committee_name"
	KeyCommitteeAddress   = "committee_address"
	KeyCommitteePhone     = "committee_phone"
	KeyCommitteePresident = "committee_president"
	KeyCommitteeTreasurer = "committee_treasurer"
)

// Concept is a named one-off charge distinct from the recurring monthly fee.
// Concepts are soft-deleted via the active flag; historical payment items copy
// name and price by value, so a concept row is never physically removed.
type Concept struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

// CreateConceptParams represents validated data needed to insert a concept.
type CreateConceptParams struct {
	Name  string
	Price decimal.Decimal
}

// UpdateConceptParams carries mutable fields for an existing concept.
type UpdateConceptParams struct {
	ID     int64
	Name   *string
	Price  *decimal.Decimal
	Active *bool
}

// CommitteeInfo is the letterhead data printed on receipts.
type CommitteeInfo struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	President string `json:"president"`
	Treasurer string `json:"treasurer"`
}
