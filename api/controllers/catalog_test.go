package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	catalogsvc "github.com/rebootmart/rebootmart-backend/internal/catalog"
	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
	"github.com/rebootmart/rebootmart-backend/pkg/pagination"
)

type testCatalogService struct {
	listFn    func(ctx context.Context, filters catalogsvc.ListFilters, params pagination.Params) (*catalogsvc.ProductPage, error)
	compareFn func(ctx context.Context, ids []uuid.UUID) ([]catalogsvc.ProductDetail, error)
}

func (s *testCatalogService) List(ctx context.Context, filters catalogsvc.ListFilters, params pagination.Params) (*catalogsvc.ProductPage, error) {
	if s.listFn != nil {
		return s.listFn(ctx, filters, params)
	}
	return &catalogsvc.ProductPage{}, nil
}

func (s *testCatalogService) Detail(context.Context, uuid.UUID) (*catalogsvc.ProductDetail, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *testCatalogService) Compare(ctx context.Context, ids []uuid.UUID) ([]catalogsvc.ProductDetail, error) {
	if s.compareFn != nil {
		return s.compareFn(ctx, ids)
	}
	return nil, nil
}

func TestListProductsRejectsUnknownCategory(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?category=toaster", nil)
	resp := httptest.NewRecorder()
	ListProducts(&testCatalogService{}, controllerTestLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListProductsForwardsFilters(t *testing.T) {
	var captured catalogsvc.ListFilters
	svc := &testCatalogService{
		listFn: func(_ context.Context, filters catalogsvc.ListFilters, _ pagination.Params) (*catalogsvc.ProductPage, error) {
			captured = filters
			return &catalogsvc.ProductPage{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?category=laptop&brand=Lenovo", nil)
	resp := httptest.NewRecorder()
	ListProducts(svc, controllerTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if captured.Category == nil || captured.Category.String() != "laptop" {
		t.Fatalf("category filter not forwarded: %+v", captured)
	}
	if captured.Brand != "Lenovo" {
		t.Fatalf("brand filter not forwarded: %q", captured.Brand)
	}
}

func TestCompareProductsBounds(t *testing.T) {
	svc := &testCatalogService{
		compareFn: func(_ context.Context, ids []uuid.UUID) ([]catalogsvc.ProductDetail, error) {
			return make([]catalogsvc.ProductDetail, len(ids)), nil
		},
	}
	handler := CompareProducts(svc, controllerTestLogger())

	one := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/compare?ids="+one, nil)
	resp := httptest.NewRecorder()
	handler(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("single id: expected 400 got %d", resp.Code)
	}

	five := strings.Join([]string{uuid.NewString(), uuid.NewString(), uuid.NewString(), uuid.NewString(), uuid.NewString()}, ",")
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/compare?ids="+five, nil)
	resp = httptest.NewRecorder()
	handler(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("five ids: expected 400 got %d", resp.Code)
	}

	pair := uuid.NewString() + "," + uuid.NewString()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/compare?ids="+pair, nil)
	resp = httptest.NewRecorder()
	handler(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("pair: unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}
