package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/shopkhata/shopkhata_backend/internal/core/ports/services"
	"github.com/shopkhata/shopkhata_backend/internal/dto"
	"github.com/shopkhata/shopkhata_backend/internal/middleware"
)

// transactionHandler handles HTTP requests for recording and reversing
// ledger transactions.
type transactionHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newTransactionHandler creates a new transactionHandler.
func newTransactionHandler(ls portssvc.LedgerSvcFacade) *transactionHandler {
	return &transactionHandler{ledgerService: ls}
}

// registerTransactionRoutes wires the transaction endpoints into the router group.
func registerTransactionRoutes(rg *gin.RouterGroup, ls portssvc.LedgerSvcFacade) {
	h := newTransactionHandler(ls)
	transactions := rg.Group("/transactions")
	{
		transactions.POST("/sale", h.recordSale)
		transactions.POST("/payment", h.recordPayment)
		transactions.POST("/adjustment", h.recordAdjustment)
		transactions.GET("/:transactionID", h.getTransaction)
		transactions.DELETE("/:transactionID", h.reverseTransaction)
	}
}

func (h *transactionHandler) recordSale(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordSale", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	sale, partial, err := h.ledgerService.RecordSale(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record sale")
		return
	}

	resp := dto.RecordSaleResponse{Sale: dto.ToTransactionResponse(sale)}
	if partial != nil {
		p := dto.ToTransactionResponse(partial)
		resp.PartialPayment = &p
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *transactionHandler) recordPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	payment, err := h.ledgerService.RecordPayment(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record payment")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(payment))
}

func (h *transactionHandler) recordAdjustment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecordAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordAdjustment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	adjustment, err := h.ledgerService.RecordAdjustment(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record adjustment")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(adjustment))
}

func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	record, err := h.ledgerService.GetTransactionByID(c.Request.Context(), transactionID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(record))
}

func (h *transactionHandler) reverseTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	if err := h.ledgerService.ReverseTransaction(c.Request.Context(), transactionID); err != nil {
		respondServiceError(c, logger, err, "Failed to reverse transaction")
		return
	}
	c.Status(http.StatusNoContent)
}
