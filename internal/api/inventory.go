package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"cafe-pos/internal/service"
)

type InventoryHandler struct {
	inventoryService *service.InventoryService
}

func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

type stockAdjustmentRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

func (h *InventoryHandler) AdjustStock(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return errorResponse(c, err)
	}

	req := stockAdjustmentRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	actor, err := actorID(c)
	if err != nil {
		return errorResponse(c, err)
	}

	item, err := h.inventoryService.AdjustStock(c.Request().Context(), id, req.Delta, req.Reason, actor)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(200, item)
}

func (h *InventoryHandler) CheckStock(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return errorResponse(c, err)
	}

	status, err := h.inventoryService.CheckStock(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(200, status)
}

func (h *InventoryHandler) GetInventoryHistory(c echo.Context) error {
	menuItemID, _ := strconv.Atoi(c.QueryParam("menu_item_id"))

	entries, err := h.inventoryService.GetInventoryHistory(c.Request().Context(), menuItemID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(200, entries)
}
