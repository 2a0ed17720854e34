package api

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"cafe-pos/internal/entity"
	"cafe-pos/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	req := entity.OrderRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	req.IdempotentKey = c.Request().Header.Get("Idempotent-Key")

	actor, err := actorID(c)
	if err != nil {
		return errorResponse(c, err)
	}
	req.ActorID = actor

	order, err := h.orderService.CreateOrder(ctx, &req)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(201, order)
}

func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return errorResponse(c, err)
	}

	upd := entity.OrderUpdate{}
	if err := c.Bind(&upd); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	actor, err := actorID(c)
	if err != nil {
		return errorResponse(c, err)
	}

	changed, err := h.orderService.UpdateOrder(c.Request().Context(), id, upd, actor)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(200, map[string]bool{"updated": changed})
}

func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return errorResponse(c, err)
	}

	actor, err := actorID(c)
	if err != nil {
		return errorResponse(c, err)
	}

	deleted, err := h.orderService.DeleteOrder(c.Request().Context(), id, actor)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(200, map[string]bool{"deleted": deleted})
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return errorResponse(c, err)
	}

	details, err := h.orderService.GetOrderWithDetails(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(200, details)
}

func (h *OrderHandler) GetOrders(c echo.Context) error {
	orders, err := h.orderService.GetAllOrders(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(200, orders)
}

func (h *OrderHandler) GetRecentOrders(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	orders, err := h.orderService.GetRecentOrders(c.Request().Context(), limit)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(200, orders)
}

func (h *OrderHandler) GetOrderStats(c echo.Context) error {
	stats, err := h.orderService.GetOrderStats(c.Request().Context(), c.QueryParam("date"))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(200, stats)
}
