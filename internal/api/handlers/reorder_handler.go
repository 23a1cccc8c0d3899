package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/forecast"
	"github.com/andresuchdata/autopo-reorder/internal/service"
	"github.com/andresuchdata/autopo-reorder/pkg/logger"
)

type ReorderHandler struct {
	service *service.ReorderService
}

func NewReorderHandler(service *service.ReorderService) *ReorderHandler {
	return &ReorderHandler{service: service}
}

type evaluateItemRequest struct {
	Item            domain.InventoryItem      `json:"item"`
	Transactions    []forecast.RawTransaction `json:"transactions"`
	Vendors         []domain.Vendor           `json:"vendors"`
	TargetStockDays int                       `json:"target_stock_days"`
}

type compareVendorsRequest struct {
	Vendors      []domain.Vendor `json:"vendors"`
	AnnualDemand float64         `json:"annual_demand"`
}

type forecastRequest struct {
	Transactions []forecast.RawTransaction `json:"transactions"`
	SKU          string                    `json:"sku"`
	OnHand       float64                   `json:"on_hand"`
	WindowDays   int                       `json:"window_days"`
}

type recommendRequest struct {
	Items        []domain.InventoryItem    `json:"items"`
	Transactions []forecast.RawTransaction `json:"transactions"`
	Vendors      []domain.Vendor           `json:"vendors"`
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingField), errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoVendorAvailable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	event := logger.Log.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Log.Error()
	}
	event.Err(err).Str("path", c.FullPath()).Int("status", status).Msg("request failed")

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "internal server error"
	}
	c.JSON(status, gin.H{"error": message})
}

func (h *ReorderHandler) EvaluateBatch(c *gin.Context) {
	var req service.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	resp, err := h.service.Evaluate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ReorderHandler) EvaluateItem(c *gin.Context) {
	sku := strings.TrimSpace(c.Param("sku"))

	var req evaluateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Item.SKU == "" {
		req.Item.SKU = sku
	}
	if req.Item.SKU != sku {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item sku does not match path"})
		return
	}

	decision, warnings, err := h.service.EvaluateItem(req.Item, req.Transactions, req.Vendors, req.TargetStockDays)
	if err != nil {
		respondError(c, err)
		return
	}
	if warnings == nil {
		warnings = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"decision": decision,
		"warnings": warnings,
	})
}

func (h *ReorderHandler) CompareVendors(c *gin.Context) {
	var req compareVendorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ranked, err := h.service.CompareVendors(req.Vendors, req.AnnualDemand)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"best":    ranked[0],
		"vendors": ranked,
	})
}

func (h *ReorderHandler) Forecast(c *gin.Context) {
	var req forecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, warnings, err := h.service.Forecast(req.Transactions, strings.TrimSpace(req.SKU), req.OnHand, req.WindowDays)
	if err != nil {
		respondError(c, err)
		return
	}
	if warnings == nil {
		warnings = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"forecast": result,
		"warnings": warnings,
	})
}

func (h *ReorderHandler) Recommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	txns, warnings := forecast.ParseTransactions(req.Transactions)
	if warnings == nil {
		warnings = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendations": h.service.Recommend(req.Items, txns, req.Vendors),
		"warnings":        warnings,
	})
}

func (h *ReorderHandler) InvalidateCache(c *gin.Context) {
	if err := h.service.InvalidateCache(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "invalidated"})
}
