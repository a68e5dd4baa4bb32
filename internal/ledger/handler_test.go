package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/lromerof/comite-agua/internal/apperr"
	"github.com/lromerof/comite-agua/internal/member"
)

type stubService struct {
	registerFn   func(context.Context, RegisterParams) (int64, error)
	paidMonthsFn func(context.Context, int64, int) ([]int, error)
}

func (s *stubService) PaidMonths(ctx context.Context, memberID int64, year int) ([]int, error) {
	if s.paidMonthsFn != nil {
		return s.paidMonthsFn(ctx, memberID, year)
	}
	return nil, nil
}

func (s *stubService) Register(ctx context.Context, params RegisterParams) (int64, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, params)
	}
	return 1, nil
}

func (s *stubService) History(context.Context, int64) ([]Payment, error) {
	return nil, nil
}

func (s *stubService) Detail(context.Context, int64) (Detail, error) {
	return Detail{}, nil
}

type stubDirectory struct{}

func (stubDirectory) GetByID(_ context.Context, id int64) (member.Member, error) {
	return member.Member{ID: id, Number: 7}, nil
}

func (stubDirectory) GetByNumber(_ context.Context, number int) (member.Member, error) {
	if number != 7 {
		return member.Member{}, apperr.NotFound("member number %d not found", number)
	}
	return member.Member{ID: 1, Number: 7, Name: "Ana García"}, nil
}

func newTestRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(svc, stubDirectory{}).RegisterRoutes(router)
	return router
}

func TestHandler_Register(t *testing.T) {
	var got RegisterParams
	svc := &stubService{
		registerFn: func(_ context.Context, params RegisterParams) (int64, error) {
			got = params
			return 9, nil
		},
	}
	router := newTestRouter(svc)

	body := `{"member_number":7,"year":2024,"months":[1,2],"extras":[{"name":"Multa","price":"80"}]}`
	req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body)
	}
	if got.MemberID != 1 {
		t.Fatalf("expected member number resolved to id 1, got %d", got.MemberID)
	}
	if len(got.Extras) != 1 || !got.Extras[0].Price.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("unexpected extras: %+v", got.Extras)
	}
}

func TestHandler_RegisterUnknownMember(t *testing.T) {
	router := newTestRouter(&stubService{})

	body := `{"member_number":99,"year":2024,"months":[1]}`
	req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestHandler_RegisterDuplicateMonth(t *testing.T) {
	svc := &stubService{
		registerFn: func(context.Context, RegisterParams) (int64, error) {
			return 0, apperr.Duplicate("one or more requested months are already paid")
		},
	}
	router := newTestRouter(svc)

	body := `{"member_number":7,"year":2024,"months":[1]}`
	req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestHandler_PaidMonths(t *testing.T) {
	svc := &stubService{
		paidMonthsFn: func(_ context.Context, memberID int64, year int) ([]int, error) {
			if memberID != 1 || year != 2024 {
				t.Fatalf("unexpected query: member %d year %d", memberID, year)
			}
			return []int{1, 2, 3}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/members/7/paid-months?year=2024", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Year       int   `json:"year"`
		PaidMonths []int `json:"paid_months"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Year != 2024 || len(resp.PaidMonths) != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHandler_PaidMonthsMissingYear(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/members/7/paid-months", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}
