package member

import "time"

// Member statuses as stored. A member is never physically deleted; removal is
// modeled as the Cancelado status.
const (
	StatusActive    = "Activo"
	StatusCancelled = "Cancelado"
)

// Member mirrors the database schema for the members table.
type Member struct {
	ID           int64     `json:"id"`
	Number       int       `json:"number"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registered_at"`
}

// CreateParams represents validated data needed to register a member. A nil
// Number requests sequential assignment (highest existing number plus one).
type CreateParams struct {
	Number  *int
	Name    string
	Address string
	Phone   string
	Email   string
}

// UpdateParams carries mutable fields for an existing member; only fields
// present are applied.
type UpdateParams struct {
	ID      int64
	Name    *string
	Address *string
	Phone   *string
	Email   *string
	Status  *string
}
