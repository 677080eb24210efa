package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"radiator-erp/internal/apperr"
	"radiator-erp/internal/models"
)

// stubPurchaseService records the last call and returns canned results, so
// the tests cover binding, validation and status mapping without a database.
type stubPurchaseService struct {
	lastFilter *models.MovementFilter
	lastReq    *models.PurchaseRequest
	lastID     int
	err        error
}

func (s *stubPurchaseService) List(_ context.Context, filter *models.MovementFilter) ([]*models.MovementRow, *models.MovementSummary, error) {
	s.lastFilter = filter
	return []*models.MovementRow{}, &models.MovementSummary{}, s.err
}

func (s *stubPurchaseService) ListGrouped(_ context.Context, filter *models.MovementFilter) ([]*models.InvoiceRow, *models.InvoiceListSummary, error) {
	s.lastFilter = filter
	return []*models.InvoiceRow{}, &models.InvoiceListSummary{}, s.err
}

func (s *stubPurchaseService) Create(_ context.Context, req *models.PurchaseRequest) (*models.PurchaseLine, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.PurchaseLine{ID: 42}, nil
}

func (s *stubPurchaseService) CreateBatch(_ context.Context, _ *models.BatchPurchaseRequest) (*models.BatchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.BatchResult{InvoiceID: 7}, nil
}

func (s *stubPurchaseService) Update(_ context.Context, id int, req *models.PurchaseRequest) (*models.PurchaseLine, error) {
	s.lastID = id
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.PurchaseLine{ID: id}, nil
}

func (s *stubPurchaseService) Delete(_ context.Context, id int) error {
	s.lastID = id
	return s.err
}

func (s *stubPurchaseService) InvoiceDetail(_ context.Context, invoiceID int) (*models.InvoiceDetail, error) {
	s.lastID = invoiceID
	if s.err != nil {
		return nil, s.err
	}
	return &models.InvoiceDetail{}, nil
}

func (s *stubPurchaseService) DocumentNumbers(_ context.Context) ([]string, error) {
	return []string{"SF20260831001"}, s.err
}

func (s *stubPurchaseService) DateRange(_ context.Context) (*models.DateRange, error) {
	return &models.DateRange{Earliest: "2026-01-01", Latest: "2026-08-31"}, s.err
}

func (s *stubPurchaseService) Suppliers(_ context.Context) ([]*models.PartyRef, error) {
	return []*models.PartyRef{{ID: 1, Name: "Anode Metals"}}, s.err
}

func newPurchaseRouter(svc *stubPurchaseService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPurchaseHandler(svc, zap.NewNop())
	r := gin.New()
	r.GET("/purchases", h.List)
	r.POST("/purchases", h.Create)
	r.PUT("/purchases/:id", h.Update)
	r.DELETE("/purchases/:id", h.Delete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPurchaseCreateValid(t *testing.T) {
	svc := &stubPurchaseService{}
	r := newPurchaseRouter(svc)

	body := `{"supplier_id":3,"material_id":5,"quantity":"120.5","unit":"kg","unit_price":"14.25","document_no":"SF20260831001","date":"2026-08-31"}`
	w := doJSON(t, r, http.MethodPost, "/purchases", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if svc.lastReq == nil || svc.lastReq.SupplierID != 3 || svc.lastReq.MaterialID != 5 {
		t.Fatalf("service saw %+v", svc.lastReq)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp["success"] != true {
		t.Fatalf("success = %v", resp["success"])
	}
}

func TestPurchaseCreateRejectsMalformedJSON(t *testing.T) {
	svc := &stubPurchaseService{}
	r := newPurchaseRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/purchases", `{"supplier_id":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if svc.lastReq != nil {
		t.Fatal("service should not be called on a bind failure")
	}
}

func TestPurchaseCreateRejectsMissingFields(t *testing.T) {
	svc := &stubPurchaseService{}
	r := newPurchaseRouter(svc)

	// no supplier_id, no date
	w := doJSON(t, r, http.MethodPost, "/purchases", `{"material_id":5,"document_no":"SF1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if svc.lastReq != nil {
		t.Fatal("service should not be called on a validation failure")
	}
}

func TestPurchaseUpdateRejectsBadID(t *testing.T) {
	svc := &stubPurchaseService{}
	r := newPurchaseRouter(svc)

	w := doJSON(t, r, http.MethodPut, "/purchases/zero", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestPurchaseDeleteMapsNotFound(t *testing.T) {
	svc := &stubPurchaseService{err: apperr.NotFound("purchase 99 not found")}
	r := newPurchaseRouter(svc)

	w := doJSON(t, r, http.MethodDelete, "/purchases/99", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["success"] != false {
		t.Fatalf("success = %v, want false", resp["success"])
	}
}

func TestPurchaseListForwardsFilters(t *testing.T) {
	svc := &stubPurchaseService{}
	r := newPurchaseRouter(svc)

	w := doJSON(t, r, http.MethodGet, "/purchases?from=2026-01-01&to=2026-01-31&party_ids=3,5&document_no=SF1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if svc.lastFilter == nil {
		t.Fatal("filter never reached the service")
	}
	if svc.lastFilter.FromDate != "2026-01-01" || svc.lastFilter.PartyIDs != "3,5" || svc.lastFilter.DocumentNo != "SF1" {
		t.Fatalf("filter = %+v", svc.lastFilter)
	}
}
