package member

import (
	"context"
	"testing"

	"github.com/lromerof/comite-agua/internal/apperr"
)

type stubStore struct {
	createFn func(context.Context, CreateParams) (Member, error)
	updateFn func(context.Context, UpdateParams) (Member, error)
}

func (s *stubStore) Create(ctx context.Context, params CreateParams) (Member, error) {
	if s.createFn != nil {
		return s.createFn(ctx, params)
	}
	return Member{}, nil
}

func (s *stubStore) GetByID(context.Context, int64) (Member, error) {
	return Member{}, nil
}

func (s *stubStore) GetByNumber(context.Context, int) (Member, error) {
	return Member{}, nil
}

func (s *stubStore) SearchByName(context.Context, string) ([]Member, error) {
	return nil, nil
}

func (s *stubStore) List(context.Context, bool) ([]Member, error) {
	return nil, nil
}

func (s *stubStore) Update(ctx context.Context, params UpdateParams) (Member, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, params)
	}
	return Member{}, nil
}

func TestService_CreateValidation(t *testing.T) {
	svc := NewService(&stubStore{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateParams{Name: "   "}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}

	zero := 0
	if _, err := svc.Create(ctx, CreateParams{Name: "Ana", Number: &zero}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for non-positive number, got %v", err)
	}
}

func TestService_CreateTrimsName(t *testing.T) {
	var got CreateParams
	svc := NewService(&stubStore{
		createFn: func(_ context.Context, params CreateParams) (Member, error) {
			got = params
			return Member{Name: params.Name}, nil
		},
	})

	if _, err := svc.Create(context.Background(), CreateParams{Name: "  Ana García  "}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if got.Name != "Ana García" {
		t.Fatalf("expected trimmed name, got %q", got.Name)
	}
}

func TestService_UpdateValidation(t *testing.T) {
	svc := NewService(&stubStore{})
	ctx := context.Background()

	empty := " "
	if _, err := svc.Update(ctx, UpdateParams{ID: 1, Name: &empty}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}

	bad := "Suspendido"
	if _, err := svc.Update(ctx, UpdateParams{ID: 1, Status: &bad}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}

	ok := StatusCancelled
	if _, err := svc.Update(ctx, UpdateParams{ID: 1, Status: &ok}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
}
