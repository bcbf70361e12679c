package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"retalia-system/internal/stock"
)

// StockService is what the gateway needs from the stock layer; satisfied
// by handler.StockHandler.
type StockService interface {
	Products(ctx context.Context, userID int64) ([]stock.ProductRef, error)
	Locations(ctx context.Context, userID int64) ([]stock.LocationRef, error)
	Catalog(ctx context.Context, userID, productID int64) ([]stock.Attribute, error)
	Preview(ctx context.Context, in stock.PreviewInput) (stock.PreviewResult, error)
	SubmitBatch(ctx context.Context, in stock.BatchInput) (stock.BatchReport, error)
}

type StockHTTPHandler struct {
	stockHandler StockService
}

func NewStockHTTPHandler(stockHandler StockService) *StockHTTPHandler {
	return &StockHTTPHandler{stockHandler: stockHandler}
}

// --- Helpers shared by the gateway handlers ---

func successJSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func errorJSON(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   message,
	})
}

func callerID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		errorJSON(c, http.StatusUnauthorized, "Missing authenticated user")
		return 0, false
	}
	id, ok := v.(int64)
	if !ok {
		errorJSON(c, http.StatusUnauthorized, "Missing authenticated user")
		return 0, false
	}
	return id, true
}

func parseInt64Param(c *gin.Context, param string) (int64, error) {
	return strconv.ParseInt(c.Param(param), 10, 64)
}

// --- Request / response shapes ---

type previewRequest struct {
	ProductID  int64   `json:"product_id" binding:"required"`
	LocationID int64   `json:"location_id" binding:"required"`
	OptionIDs  []int64 `json:"option_ids"`
}

type previewResponse struct {
	VariantID     *int64  `json:"variant_id"`
	CurrentStock  int32   `json:"current_stock"`
	ExistingPrice *string `json:"existing_price"`
}

type batchRowRequest struct {
	OptionIDs []int64 `json:"option_ids"`
	Quantity  int32   `json:"quantity"`
	Price     *string `json:"price"`
}

type submitBatchRequest struct {
	ProductID  int64             `json:"product_id" binding:"required"`
	LocationID int64             `json:"location_id" binding:"required"`
	EntryDate  string            `json:"entry_date"`
	Rows       []batchRowRequest `json:"rows" binding:"required,min=1"`
}

type rowOutcome struct {
	Row       int     `json:"row"`
	Status    string  `json:"status"`
	VariantID *int64  `json:"variant_id,omitempty"`
	Quantity  *int32  `json:"quantity,omitempty"`
	Price     *string `json:"price,omitempty"`
	Kind      string  `json:"kind,omitempty"`
	Error     string  `json:"error,omitempty"`
	Warning   string  `json:"warning,omitempty"`
}

type batchResponse struct {
	AllSucceeded bool         `json:"all_succeeded"`
	Results      []rowOutcome `json:"results"`
}

// --- Endpoints ---

func (s *StockHTTPHandler) PreviewStock(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := s.stockHandler.Preview(c.Request.Context(), stock.PreviewInput{
		UserID:     userID,
		ProductID:  req.ProductID,
		LocationID: req.LocationID,
		OptionIDs:  req.OptionIDs,
	})
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "Failed to resolve preview: "+err.Error())
		return
	}

	resp := previewResponse{
		VariantID:    result.VariantID,
		CurrentStock: result.CurrentStock,
	}
	if result.ExistingPrice != nil {
		p := result.ExistingPrice.StringFixed(2)
		resp.ExistingPrice = &p
	}

	successJSON(c, resp)
}

func (s *StockHTTPHandler) SubmitStockBatch(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req submitBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	in := stock.BatchInput{
		UserID:     userID,
		ProductID:  req.ProductID,
		LocationID: req.LocationID,
		Rows:       make([]stock.BatchRow, len(req.Rows)),
	}

	if req.EntryDate != "" {
		entryDate, err := time.Parse("2006-01-02", req.EntryDate)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, "Invalid entry_date, expected YYYY-MM-DD")
			return
		}
		in.EntryDate = entryDate
	}

	for i, row := range req.Rows {
		in.Rows[i] = stock.BatchRow{
			OptionIDs: row.OptionIDs,
			Quantity:  row.Quantity,
		}
		if row.Price != nil && *row.Price != "" {
			price, err := decimal.NewFromString(*row.Price)
			if err != nil {
				errorJSON(c, http.StatusBadRequest, "Invalid price on row "+strconv.Itoa(i))
				return
			}
			in.Rows[i].Price = &price
		}
	}

	report, err := s.stockHandler.SubmitBatch(c.Request.Context(), in)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "Failed to submit batch: "+err.Error())
		return
	}

	successJSON(c, batchReportToResponse(report))
}

func batchReportToResponse(report stock.BatchReport) batchResponse {
	resp := batchResponse{
		AllSucceeded: report.AllSucceeded(),
		Results:      make([]rowOutcome, len(report.Results)),
	}

	for i, res := range report.Results {
		out := rowOutcome{Row: res.Row, Status: "ok"}
		if res.VariantID != 0 {
			id := res.VariantID
			out.VariantID = &id
		}
		if res.Committed != nil {
			qty := res.Committed.Quantity
			out.Quantity = &qty
			if res.Committed.Price != nil {
				p := res.Committed.Price.StringFixed(2)
				out.Price = &p
			}
		}
		if res.Err != nil {
			out.Status = "error"
			out.Kind = string(res.Err.Kind)
			out.Error = res.Err.Err.Error()
		}
		if res.Warning != nil {
			out.Warning = res.Warning.Error()
		}
		resp.Results[i] = out
	}

	return resp
}
