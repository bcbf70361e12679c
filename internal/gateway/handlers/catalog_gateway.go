package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"retalia-system/internal/stock"
)

// CatalogHTTPHandler serves the read surface the stock-entry screen needs:
// the caller's products and locations plus the attribute catalog of a
// product.
type CatalogHTTPHandler struct {
	stockHandler StockService
}

func NewCatalogHTTPHandler(stockHandler StockService) *CatalogHTTPHandler {
	return &CatalogHTTPHandler{stockHandler: stockHandler}
}

func (s *CatalogHTTPHandler) ListProducts(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	products, err := s.stockHandler.Products(c.Request.Context(), userID)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "Failed to load products: "+err.Error())
		return
	}
	if products == nil {
		products = []stock.ProductRef{}
	}

	successJSON(c, products)
}

func (s *CatalogHTTPHandler) ListLocations(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	locations, err := s.stockHandler.Locations(c.Request.Context(), userID)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "Failed to load locations: "+err.Error())
		return
	}
	if locations == nil {
		locations = []stock.LocationRef{}
	}

	successJSON(c, locations)
}

func (s *CatalogHTTPHandler) GetProductAttributes(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	productID, err := parseInt64Param(c, "id")
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	attrs, err := s.stockHandler.Catalog(c.Request.Context(), userID, productID)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "Failed to load attributes: "+err.Error())
		return
	}
	if attrs == nil {
		attrs = []stock.Attribute{}
	}

	successJSON(c, attrs)
}
