package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retalia-system/internal/stock"
)

type fakeStockService struct {
	lastBatch   stock.BatchInput
	batchReport stock.BatchReport
	batchErr    error
	preview     stock.PreviewResult
	previewErr  error
}

func (f *fakeStockService) Products(ctx context.Context, userID int64) ([]stock.ProductRef, error) {
	return []stock.ProductRef{{ID: 1, Name: "Shirt"}}, nil
}

func (f *fakeStockService) Locations(ctx context.Context, userID int64) ([]stock.LocationRef, error) {
	return []stock.LocationRef{{ID: 1, Name: "Main"}}, nil
}

func (f *fakeStockService) Catalog(ctx context.Context, userID, productID int64) ([]stock.Attribute, error) {
	return []stock.Attribute{}, nil
}

func (f *fakeStockService) Preview(ctx context.Context, in stock.PreviewInput) (stock.PreviewResult, error) {
	return f.preview, f.previewErr
}

func (f *fakeStockService) SubmitBatch(ctx context.Context, in stock.BatchInput) (stock.BatchReport, error) {
	f.lastBatch = in
	return f.batchReport, f.batchErr
}

func newTestRouter(svc StockService, authed bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if authed {
		r.Use(func(c *gin.Context) {
			c.Set("user_id", int64(7))
			c.Next()
		})
	}

	stockHTTP := NewStockHTTPHandler(svc)
	catalogHTTP := NewCatalogHTTPHandler(svc)
	r.GET("/catalog/products", catalogHTTP.ListProducts)
	r.POST("/inventory/stock/preview", stockHTTP.PreviewStock)
	r.POST("/inventory/stock/batches", stockHTTP.SubmitStockBatch)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitStockBatchEndpoint(t *testing.T) {
	price := decimal.RequireFromString("200.00")
	variantID := int64(31)
	svc := &fakeStockService{
		batchReport: stock.BatchReport{Results: []stock.RowResult{
			{Row: 0, VariantID: variantID, Committed: &stock.StockRecord{
				VariantID: variantID, LocationID: 1, Quantity: 8, Price: &price,
			}},
		}},
	}
	r := newTestRouter(svc, true)

	w := doJSON(t, r, http.MethodPost, "/inventory/stock/batches", gin.H{
		"product_id":  10,
		"location_id": 1,
		"entry_date":  "2026-08-14",
		"rows": []gin.H{
			{"option_ids": []int64{1002}, "quantity": 3, "price": "999"},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			AllSucceeded bool `json:"all_succeeded"`
			Results      []struct {
				Row       int     `json:"row"`
				Status    string  `json:"status"`
				VariantID *int64  `json:"variant_id"`
				Quantity  *int32  `json:"quantity"`
				Price     *string `json:"price"`
			} `json:"results"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Data.AllSucceeded)
	require.Len(t, resp.Data.Results, 1)
	assert.Equal(t, "ok", resp.Data.Results[0].Status)
	require.NotNil(t, resp.Data.Results[0].Quantity)
	assert.Equal(t, int32(8), *resp.Data.Results[0].Quantity)
	require.NotNil(t, resp.Data.Results[0].Price)
	assert.Equal(t, "200.00", *resp.Data.Results[0].Price)

	// The bound request reaches the service with the caller's id and the
	// parsed entry date and price.
	assert.Equal(t, int64(7), svc.lastBatch.UserID)
	assert.Equal(t, int64(10), svc.lastBatch.ProductID)
	require.Len(t, svc.lastBatch.Rows, 1)
	require.NotNil(t, svc.lastBatch.Rows[0].Price)
	assert.True(t, svc.lastBatch.Rows[0].Price.Equal(decimal.RequireFromString("999")))
	assert.Equal(t, 2026, svc.lastBatch.EntryDate.Year())
}

func TestSubmitStockBatchReportsRowErrors(t *testing.T) {
	svc := &fakeStockService{
		batchReport: stock.BatchReport{Results: []stock.RowResult{
			{Row: 0, Err: &stock.RowError{Kind: stock.KindValidation, Row: 0, Err: errors.New("quantity must be a positive integer, got 0")}},
			{Row: 1, Err: &stock.RowError{Kind: stock.KindProvisioning, Row: 1, Err: errors.New("link variant options: boom")},
				Warning: &stock.OrphanVariantWarning{VariantID: 99, Cause: errors.New("delete failed")}},
		}},
	}
	r := newTestRouter(svc, true)

	w := doJSON(t, r, http.MethodPost, "/inventory/stock/batches", gin.H{
		"product_id":  10,
		"location_id": 1,
		"rows": []gin.H{
			{"option_ids": []int64{1002}, "quantity": 0},
			{"option_ids": []int64{1003}, "quantity": 2, "price": "50"},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			AllSucceeded bool `json:"all_succeeded"`
			Results      []struct {
				Status  string `json:"status"`
				Kind    string `json:"kind"`
				Error   string `json:"error"`
				Warning string `json:"warning"`
			} `json:"results"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.AllSucceeded)
	require.Len(t, resp.Data.Results, 2)
	assert.Equal(t, "error", resp.Data.Results[0].Status)
	assert.Equal(t, "validation", resp.Data.Results[0].Kind)
	assert.Equal(t, "provisioning", resp.Data.Results[1].Kind)
	assert.Contains(t, resp.Data.Results[1].Warning, "manual cleanup required")
}

func TestSubmitStockBatchRejectsBadRequests(t *testing.T) {
	svc := &fakeStockService{}
	r := newTestRouter(svc, true)

	cases := []struct {
		name string
		body gin.H
	}{
		{"missing rows", gin.H{"product_id": 10, "location_id": 1}},
		{"empty rows", gin.H{"product_id": 10, "location_id": 1, "rows": []gin.H{}}},
		{"missing product", gin.H{"location_id": 1, "rows": []gin.H{{"quantity": 1}}}},
		{"bad entry date", gin.H{"product_id": 10, "location_id": 1, "entry_date": "14/08/2026",
			"rows": []gin.H{{"quantity": 1, "price": "10"}}}},
		{"bad price", gin.H{"product_id": 10, "location_id": 1,
			"rows": []gin.H{{"quantity": 1, "price": "ten"}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/inventory/stock/batches", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSubmitStockBatchRequiresAuth(t *testing.T) {
	r := newTestRouter(&fakeStockService{}, false)

	w := doJSON(t, r, http.MethodPost, "/inventory/stock/batches", gin.H{
		"product_id": 10, "location_id": 1, "rows": []gin.H{{"quantity": 1, "price": "10"}},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPreviewStockEndpoint(t *testing.T) {
	variantID := int64(31)
	price := decimal.RequireFromString("200")
	svc := &fakeStockService{
		preview: stock.PreviewResult{VariantID: &variantID, CurrentStock: 5, ExistingPrice: &price},
	}
	r := newTestRouter(svc, true)

	w := doJSON(t, r, http.MethodPost, "/inventory/stock/preview", gin.H{
		"product_id":  10,
		"location_id": 1,
		"option_ids":  []int64{1002},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			VariantID     *int64  `json:"variant_id"`
			CurrentStock  int32   `json:"current_stock"`
			ExistingPrice *string `json:"existing_price"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.VariantID)
	assert.Equal(t, variantID, *resp.Data.VariantID)
	assert.Equal(t, int32(5), resp.Data.CurrentStock)
	require.NotNil(t, resp.Data.ExistingPrice)
	assert.Equal(t, "200.00", *resp.Data.ExistingPrice)
}

func TestListProductsEndpoint(t *testing.T) {
	r := newTestRouter(&fakeStockService{}, true)

	w := doJSON(t, r, http.MethodGet, "/catalog/products", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool               `json:"success"`
		Data    []stock.ProductRef `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Shirt", resp.Data[0].Name)
}
