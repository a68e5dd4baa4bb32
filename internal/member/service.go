package member

import (
	"context"
	"strings"

	"github.com/lromerof/comite-agua/internal/apperr"
)

// Store abstracts persistence for members.
type Store interface {
	Create(ctx context.Context, params CreateParams) (Member, error)
	GetByID(ctx context.Context, id int64) (Member, error)
	GetByNumber(ctx context.Context, number int) (Member, error)
	SearchByName(ctx context.Context, fragment string) ([]Member, error)
	List(ctx context.Context, activeOnly bool) ([]Member, error)
	Update(ctx context.Context, params UpdateParams) (Member, error)
}

// Service defines the member operations exposed to handlers.
type Service interface {
	Create(ctx context.Context, params CreateParams) (Member, error)
	GetByID(ctx context.Context, id int64) (Member, error)
	GetByNumber(ctx context.Context, number int) (Member, error)
	SearchByName(ctx context.Context, fragment string) ([]Member, error)
	List(ctx context.Context, activeOnly bool) ([]Member, error)
	Update(ctx context.Context, params UpdateParams) (Member, error)
}

type service struct {
	repo Store
}

// NewService creates a Service backed by the provided repository.
func NewService(repo Store) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, params CreateParams) (Member, error) {
	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return Member{}, apperr.Validation("member name is required")
	}
	if params.Number != nil && *params.Number <= 0 {
		return Member{}, apperr.Validation("member number must be positive")
	}
	return s.repo.Create(ctx, params)
}

func (s *service) GetByID(ctx context.Context, id int64) (Member, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByNumber(ctx context.Context, number int) (Member, error) {
	return s.repo.GetByNumber(ctx, number)
}

func (s *service) SearchByName(ctx context.Context, fragment string) ([]Member, error) {
	return s.repo.SearchByName(ctx, strings.TrimSpace(fragment))
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]Member, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *service) Update(ctx context.Context, params UpdateParams) (Member, error) {
	if params.Name != nil {
		trimmed := strings.TrimSpace(*params.Name)
		if trimmed == "" {
			return Member{}, apperr.Validation("member name cannot be empty")
		}
		params.Name = &trimmed
	}
	if params.Status != nil && *params.Status != StatusActive && *params.Status != StatusCancelled {
		return Member{}, apperr.Validation("status must be %q or %q", StatusActive, StatusCancelled)
	}
	return s.repo.Update(ctx, params)
}
