package tariff

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lromerof/comite-agua/internal/apperr"
)

// fakeStore keeps settings and concepts in memory.
type fakeStore struct {
	settings map[string]string
	concepts map[int64]Concept
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		settings: map[string]string{
			KeyMonthlyFee: "50.00",
			KeyAccessPIN:  "1234",
		},
		concepts: map[int64]Concept{},
	}
}

func (f *fakeStore) GetSetting(_ context.Context, key string) (string, error) {
	value, ok := f.settings[key]
	if !ok {
		return "", apperr.NotFound("setting %s not found", key)
	}
	return value, nil
}

func (f *fakeStore) SetSetting(_ context.Context, key, value string) error {
	f.settings[key] = value
	return nil
}

func (f *fakeStore) ListConcepts(_ context.Context, activeOnly bool) ([]Concept, error) {
	var out []Concept
	for _, c := range f.concepts {
		if activeOnly && !c.Active {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) GetConcept(_ context.Context, id int64) (Concept, error) {
	c, ok := f.concepts[id]
	if !ok {
		return Concept{}, apperr.NotFound("concept %d not found", id)
	}
	return c, nil
}

func (f *fakeStore) CreateConcept(_ context.Context, params CreateConceptParams) (Concept, error) {
	for _, c := range f.concepts {
		if c.Name == params.Name {
			return Concept{}, apperr.Duplicate("concept %q already exists", params.Name)
		}
	}
	f.nextID++
	c := Concept{ID: f.nextID, Name: params.Name, Price: params.Price, Active: true}
	f.concepts[c.ID] = c
	return c, nil
}

func (f *fakeStore) UpdateConcept(_ context.Context, params UpdateConceptParams) (Concept, error) {
	c, ok := f.concepts[params.ID]
	if !ok {
		return Concept{}, apperr.NotFound("concept %d not found", params.ID)
	}
	if params.Name != nil {
		c.Name = *params.Name
	}
	if params.Price != nil {
		c.Price = *params.Price
	}
	if params.Active != nil {
		c.Active = *params.Active
	}
	f.concepts[params.ID] = c
	return c, nil
}

func TestService_MonthlyFee(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	fee, err := svc.MonthlyFee(ctx)
	if err != nil {
		t.Fatalf("MonthlyFee returned error: %v", err)
	}
	if !fee.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected fee 50, got %s", fee)
	}

	if err := svc.SetMonthlyFee(ctx, decimal.NewFromInt(65)); err != nil {
		t.Fatalf("SetMonthlyFee returned error: %v", err)
	}
	fee, _ = svc.MonthlyFee(ctx)
	if !fee.Equal(decimal.NewFromInt(65)) {
		t.Fatalf("expected fee 65 after update, got %s", fee)
	}

	if err := svc.SetMonthlyFee(ctx, decimal.Zero); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for zero fee, got %v", err)
	}
}

func TestService_CreateConceptValidation(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	if _, err := svc.CreateConcept(ctx, CreateConceptParams{Name: " ", Price: decimal.NewFromInt(10)}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}
	if _, err := svc.CreateConcept(ctx, CreateConceptParams{Name: "Multa", Price: decimal.NewFromInt(-5)}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for negative price, got %v", err)
	}

	c, err := svc.CreateConcept(ctx, CreateConceptParams{Name: "Multa", Price: decimal.NewFromInt(100)})
	if err != nil {
		t.Fatalf("CreateConcept returned error: %v", err)
	}
	if !c.Active {
		t.Fatal("expected new concept active")
	}

	if _, err := svc.CreateConcept(ctx, CreateConceptParams{Name: "Multa", Price: decimal.NewFromInt(80)}); !apperr.IsKind(err, apperr.KindDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestService_DeactivateConcept(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	c, err := svc.CreateConcept(ctx, CreateConceptParams{Name: "Reconexión", Price: decimal.NewFromInt(150)})
	if err != nil {
		t.Fatalf("CreateConcept returned error: %v", err)
	}

	if err := svc.DeactivateConcept(ctx, c.ID); err != nil {
		t.Fatalf("DeactivateConcept returned error: %v", err)
	}

	active, _ := svc.ListConcepts(ctx, true)
	if len(active) != 0 {
		t.Fatalf("expected no active concepts, got %d", len(active))
	}
	all, _ := svc.ListConcepts(ctx, false)
	if len(all) != 1 {
		t.Fatalf("expected concept retained, got %d", len(all))
	}
}

func TestService_PIN(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	ok, err := svc.VerifyPIN(ctx, "1234")
	if err != nil || !ok {
		t.Fatalf("expected PIN 1234 to verify, got ok=%v err=%v", ok, err)
	}
	ok, _ = svc.VerifyPIN(ctx, "0000")
	if ok {
		t.Fatal("expected wrong PIN rejected")
	}

	if err := svc.ChangePIN(ctx, "0000", "5678"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for wrong current PIN, got %v", err)
	}
	if err := svc.ChangePIN(ctx, "1234", "12"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for short PIN, got %v", err)
	}
	if err := svc.ChangePIN(ctx, "1234", "12ab"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for non-digit PIN, got %v", err)
	}

	if err := svc.ChangePIN(ctx, "1234", "567890"); err != nil {
		t.Fatalf("ChangePIN returned error: %v", err)
	}
	ok, _ = svc.VerifyPIN(ctx, "567890")
	if !ok {
		t.Fatal("expected new PIN to verify")
	}
}

func TestService_CommitteeInfo(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	// Missing keys are treated as empty, not as errors.
	info, err := svc.CommitteeInfo(ctx)
	if err != nil {
		t.Fatalf("CommitteeInfo returned error: %v", err)
	}
	if info.Name != "" {
		t.Fatalf("expected empty committee name, got %q", info.Name)
	}

	want := CommitteeInfo{
		Name:      "Comité de Agua Potable San Pedro",
		President: "María López",
		Treasurer: "José Ramírez",
	}
	if err := svc.UpdateCommitteeInfo(ctx, want); err != nil {
		t.Fatalf("UpdateCommitteeInfo returned error: %v", err)
	}

	info, err = svc.CommitteeInfo(ctx)
	if err != nil {
		t.Fatalf("CommitteeInfo returned error: %v", err)
	}
	if info.Name != want.Name || info.President != want.President || info.Treasurer != want.Treasurer {
		t.Fatalf("unexpected committee info: %+v", info)
	}
}
