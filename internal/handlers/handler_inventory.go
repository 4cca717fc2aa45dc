package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/shopkhata/shopkhata_backend/internal/core/ports/services"
	"github.com/shopkhata/shopkhata_backend/internal/dto"
	"github.com/shopkhata/shopkhata_backend/internal/middleware"
)

// inventoryHandler handles HTTP requests related to stock and the brand catalog.
type inventoryHandler struct {
	inventoryService portssvc.InventorySvcFacade
}

// newInventoryHandler creates a new inventoryHandler.
func newInventoryHandler(is portssvc.InventorySvcFacade) *inventoryHandler {
	return &inventoryHandler{inventoryService: is}
}

// registerInventoryRoutes wires the inventory and brand endpoints into the router group.
func registerInventoryRoutes(rg *gin.RouterGroup, is portssvc.InventorySvcFacade) {
	h := newInventoryHandler(is)
	inventory := rg.Group("/inventory")
	{
		inventory.POST("", h.addStock)
		inventory.GET("", h.listItems)
		inventory.GET("/:brand", h.getItem)
		inventory.DELETE("/:brand", h.deleteItem)
	}
	rg.GET("/brands", h.listBrands)
}

func (h *inventoryHandler) addStock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AddStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddStock", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	item, err := h.inventoryService.AddStock(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to add stock")
		return
	}
	c.JSON(http.StatusCreated, dto.ToInventoryItemResponse(item))
}

func (h *inventoryHandler) getItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	brand := c.Param("brand")

	item, err := h.inventoryService.GetItemByBrand(c.Request.Context(), brand)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve inventory item")
		return
	}
	c.JSON(http.StatusOK, dto.ToInventoryItemResponse(item))
}

func (h *inventoryHandler) listItems(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	items, err := h.inventoryService.ListItems(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list inventory")
		return
	}
	c.JSON(http.StatusOK, dto.ToInventoryItemResponses(items))
}

func (h *inventoryHandler) deleteItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	brand := c.Param("brand")

	if err := h.inventoryService.DeleteItem(c.Request.Context(), brand); err != nil {
		respondServiceError(c, logger, err, "Failed to delete inventory item")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *inventoryHandler) listBrands(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	brands, err := h.inventoryService.ListBrands(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list brands")
		return
	}
	c.JSON(http.StatusOK, dto.ToBrandResponses(brands))
}
