package tariff

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lromerof/comite-agua/internal/apperr"
)

// Store abstracts persistence for settings and concepts.
type Store interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	ListConcepts(ctx context.Context, activeOnly bool) ([]Concept, error)
	GetConcept(ctx context.Context, id int64) (Concept, error)
	CreateConcept(ctx context.Context, params CreateConceptParams) (Concept, error)
	UpdateConcept(ctx context.Context, params UpdateConceptParams) (Concept, error)
}

// Service defines the registry operations exposed to handlers and to the
// payment ledger.
type Service interface {
	MonthlyFee(ctx context.Context) (decimal.Decimal, error)
	SetMonthlyFee(ctx context.Context, fee decimal.Decimal) error
	ListConcepts(ctx context.Context, activeOnly bool) ([]Concept, error)
	CreateConcept(ctx context.Context, params CreateConceptParams) (Concept, error)
	UpdateConcept(ctx context.Context, params UpdateConceptParams) (Concept, error)
	DeactivateConcept(ctx context.Context, id int64) error
	VerifyPIN(ctx context.Context, pin string) (bool, error)
	ChangePIN(ctx context.Context, currentPIN, newPIN string) error
	CommitteeInfo(ctx context.Context) (CommitteeInfo, error)
	UpdateCommitteeInfo(ctx context.Context, info CommitteeInfo) error
}

type service struct {
	repo Store
}

// NewService creates a Service backed by the provided repository.
func NewService(repo Store) Service {
	return &service{repo: repo}
}

func (s *service) MonthlyFee(ctx context.Context) (decimal.Decimal, error) {
	raw, err := s.repo.GetSetting(ctx, KeyMonthlyFee)
	if err != nil {
		return decimal.Zero, err
	}

	fee, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperr.Storage("parse monthly fee", err)
	}
	return fee, nil
}

func (s *service) SetMonthlyFee(ctx context.Context, fee decimal.Decimal) error {
	if fee.LessThanOrEqual(decimal.Zero) {
		return apperr.Validation("monthly fee must be greater than zero")
	}
	return s.repo.SetSetting(ctx, KeyMonthlyFee, fee.StringFixed(2))
}

func (s *service) ListConcepts(ctx context.Context, activeOnly bool) ([]Concept, error) {
	return s.repo.ListConcepts(ctx, activeOnly)
}

func (s *service) CreateConcept(ctx context.Context, params CreateConceptParams) (Concept, error) {
	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return Concept{}, apperr.Validation("concept name is required")
	}
	if params.Price.LessThanOrEqual(decimal.Zero) {
		return Concept{}, apperr.Validation("concept price must be greater than zero")
	}
	return s.repo.CreateConcept(ctx, params)
}

func (s *service) UpdateConcept(ctx context.Context, params UpdateConceptParams) (Concept, error) {
	if params.Name != nil {
		trimmed := strings.TrimSpace(*params.Name)
		if trimmed == "" {
			return Concept{}, apperr.Validation("concept name cannot be empty")
		}
		params.Name = &trimmed
	}
	if params.Price != nil && params.Price.LessThanOrEqual(decimal.Zero) {
		return Concept{}, apperr.Validation("concept price must be greater than zero")
	}
	return s.repo.UpdateConcept(ctx, params)
}

// DeactivateConcept soft-deletes a concept. Historical payment items keep the
// concept label and price by value, so rows are never removed.
func (s *service) DeactivateConcept(ctx context.Context, id int64) error {
	inactive := false
	_, err := s.repo.UpdateConcept(ctx, UpdateConceptParams{ID: id, Active: &inactive})
	return err
}

func (s *service) VerifyPIN(ctx context.Context, pin string) (bool, error) {
	stored, err := s.repo.GetSetting(ctx, KeyAccessPIN)
	if err != nil {
		return false, err
	}
	return stored == strings.TrimSpace(pin), nil
}

func (s *service) ChangePIN(ctx context.Context, currentPIN, newPIN string) error {
	ok, err := s.VerifyPIN(ctx, currentPIN)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Validation("current PIN is incorrect")
	}

	newPIN = strings.TrimSpace(newPIN)
	if len(newPIN) < 4 || len(newPIN) > 8 {
		return apperr.Validation("PIN must be 4 to 8 digits")
	}
	for _, r := range newPIN {
		if r < '0' || r > '9' {
			return apperr.Validation("PIN must contain only digits")
		}
	}

	return s.repo.SetSetting(ctx, KeyAccessPIN, newPIN)
}

func (s *service) CommitteeInfo(ctx context.Context) (CommitteeInfo, error) {
	var info CommitteeInfo
	fields := []struct {
		key string
		dst *string
	}{
		{KeyCommitteeName, &info.Name},
		{KeyCommitteeAddress, &info.Address},
		{KeyCommitteePhone, &info.Phone},
		{KeyCommitteePresident, &info.President},
		{KeyCommitteeTreasurer, &info.Treasurer},
	}

	for _, f := range fields {
		value, err := s.repo.GetSetting(ctx, f.key)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				continue
			}
			return CommitteeInfo{}, err
		}
		*f.dst = value
	}
	return info, nil
}

func (s *service) UpdateCommitteeInfo(ctx context.Context, info CommitteeInfo) error {
	fields := map[string]string{
		KeyCommitteeName:      info.Name,
		KeyCommitteeAddress:   info.Address,
		KeyCommitteePhone:     info.Phone,
		KeyCommitteePresident: info.President,
		KeyCommitteeTreasurer: info.Treasurer,
	}
	for key, value := range fields {
		if err := s.repo.SetSetting(ctx, key, strings.TrimSpace(value)); err != nil {
			return err
		}
	}
	return nil
}
