package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lromerof/comite-agua/internal/apperr"
	"github.com/lromerof/comite-agua/internal/ledger"
	"github.com/lromerof/comite-agua/internal/member"
)

// Result summarizes a bulk import: rows persisted plus one message per row
// that was skipped. A partially failed import is not rolled back; each row is
// its own unit of work.
type Result struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// MemberWriter creates members. Satisfied by member.Service.
type MemberWriter interface {
	Create(ctx context.Context, params member.CreateParams) (member.Member, error)
	GetByNumber(ctx context.Context, number int) (member.Member, error)
}

// PaymentWriter registers payments. Satisfied by ledger.Service.
type PaymentWriter interface {
	Register(ctx context.Context, params ledger.RegisterParams) (int64, error)
}

// Service reads CSV exports from the committee's previous spreadsheets.
type Service struct {
	members  MemberWriter
	payments PaymentWriter
}

func NewService(members MemberWriter, payments PaymentWriter) *Service {
	return &Service{members: members, payments: payments}
}

// Column synonyms seen across the committee's historical spreadsheets. Headers
// are matched case-insensitively after trimming.
var memberColumns = map[string]string{
	"numero": "number", "núm": "number", "num": "number", "number": "number", "no": "number", "id": "number",
	"nombre": "name", "name": "name", "usuario": "name", "user": "name",
	"direccion": "address", "dirección": "address", "address": "address", "domicilio": "address", "dir": "address",
	"telefono": "phone", "teléfono": "phone", "phone": "phone", "tel": "phone", "celular": "phone",
	"email": "email", "correo": "email", "mail": "email", "e-mail": "email",
}

// ImportMembers loads one member per CSV row. The first row must be a header
// with a number column and a name column; a row with a blank or unparsable
// number is reported as a row error, never auto-numbered, so historical
// account numbers survive the import intact.
func (s *Service) ImportMembers(ctx context.Context, r io.Reader) (Result, error) {
	records, err := readCSV(r)
	if err != nil {
		return Result{}, err
	}
	if len(records) < 2 {
		return Result{}, apperr.Validation("CSV has no data rows")
	}

	cols := mapHeader(records[0], memberColumns)
	if _, ok := cols["number"]; !ok {
		return Result{}, apperr.Validation("CSV is missing a number column (numero)")
	}
	if _, ok := cols["name"]; !ok {
		return Result{}, apperr.Validation("CSV is missing a name column (nombre)")
	}

	result := Result{Errors: []string{}}
	for i, row := range records[1:] {
		line := i + 2

		raw := field(row, cols, "number")
		if raw == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing member number", line))
			continue
		}
		number, err := strconv.Atoi(raw)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: invalid member number %q", line, raw))
			continue
		}

		params := member.CreateParams{
			Number:  &number,
			Name:    field(row, cols, "name"),
			Address: field(row, cols, "address"),
			Phone:   field(row, cols, "phone"),
			Email:   field(row, cols, "email"),
		}

		if _, err := s.members.Create(ctx, params); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		result.Imported++
	}

	return result, nil
}

// Month column headers recognized in payment spreadsheets: Spanish names,
// their three-letter abbreviations, or plain month numbers.
var monthColumns = map[string]int{
	"1": 1, "ene": 1, "enero": 1,
	"2": 2, "feb": 2, "febrero": 2,
	"3": 3, "mar": 3, "marzo": 3,
	"4": 4, "abr": 4, "abril": 4,
	"5": 5, "may": 5, "mayo": 5,
	"6": 6, "jun": 6, "junio": 6,
	"7": 7, "jul": 7, "julio": 7,
	"8": 8, "ago": 8, "agosto": 8,
	"9": 9, "sep": 9, "sept": 9, "septiembre": 9,
	"10": 10, "oct": 10, "octubre": 10,
	"11": 11, "nov": 11, "noviembre": 11,
	"12": 12, "dic": 12, "diciembre": 12,
}

// ImportPayments loads historical monthly payments. The header must carry a
// member number column and month columns, both matched by name so extra
// columns cannot shift the months; any truthy month cell marks that month as
// paid. One payment is registered per row, so a row with three marked months
// becomes a single payment with three line items.
func (s *Service) ImportPayments(ctx context.Context, r io.Reader, year int, filename string) (Result, error) {
	if year <= 0 {
		return Result{}, apperr.Validation("year must be positive")
	}

	records, err := readCSV(r)
	if err != nil {
		return Result{}, err
	}
	if len(records) < 2 {
		return Result{}, apperr.Validation("CSV has no data rows")
	}

	cols := mapHeader(records[0], memberColumns)
	numberCol, ok := cols["number"]
	if !ok {
		return Result{}, apperr.Validation("CSV is missing a number column (numero)")
	}

	monthCols := map[int]int{}
	for i, raw := range records[0] {
		if m, ok := monthColumns[strings.ToLower(strings.TrimSpace(raw))]; ok {
			if _, taken := monthCols[m]; !taken {
				monthCols[m] = i
			}
		}
	}
	if len(monthCols) == 0 {
		return Result{}, apperr.Validation("CSV has no month columns (ene..dic)")
	}

	notes := "Importado desde CSV: " + filename

	result := Result{Errors: []string{}}
	for i, row := range records[1:] {
		line := i + 2
		if numberCol >= len(row) || strings.TrimSpace(row[numberCol]) == "" {
			continue
		}

		number, err := strconv.Atoi(strings.TrimSpace(row[numberCol]))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: invalid member number %q", line, row[numberCol]))
			continue
		}

		var months []int
		for month := 1; month <= 12; month++ {
			col, ok := monthCols[month]
			if !ok || col >= len(row) {
				continue
			}
			if truthy(row[col]) {
				months = append(months, month)
			}
		}
		if len(months) == 0 {
			continue
		}

		m, err := s.members.GetByNumber(ctx, number)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: member %d: %v", line, number, err))
			continue
		}

		if _, err := s.payments.Register(ctx, ledger.RegisterParams{
			MemberID: m.ID,
			Months:   months,
			Year:     year,
			Notes:    notes,
		}); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: member %d: %v", line, number, err))
			continue
		}
		result.Imported++
	}

	return result, nil
}

// readCSV parses the whole input, sniffing the delimiter from the header line
// since exports arrive comma-, semicolon- or tab-separated.
func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperr.Storage("read CSV", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperr.Validation("CSV file is empty")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperr.Validation("malformed CSV: %v", err)
	}
	return records, nil
}

func sniffDelimiter(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}

	best := ','
	bestCount := bytes.Count(header, []byte{','})
	for _, candidate := range []byte{';', '\t'} {
		if n := bytes.Count(header, []byte{candidate}); n > bestCount {
			best = rune(candidate)
			bestCount = n
		}
	}
	return best
}

func mapHeader(header []string, synonyms map[string]string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, raw := range header {
		key := strings.ToLower(strings.TrimSpace(raw))
		if canonical, ok := synonyms[key]; ok {
			if _, taken := cols[canonical]; !taken {
				cols[canonical] = i
			}
		}
	}
	return cols
}

func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// truthy reports whether a month cell marks the month as paid.
func truthy(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "0", "no", "false", "-":
		return false
	default:
		return true
	}
}
