package api

import (
	"github.com/labstack/echo/v4"

	"cafe-pos/internal/service"
)

type TableHandler struct {
	tableService *service.TableService
}

func NewTableHandler(tableService *service.TableService) *TableHandler {
	return &TableHandler{tableService: tableService}
}

func (h *TableHandler) GetTables(c echo.Context) error {
	ctx := c.Request().Context()

	if status := c.QueryParam("status"); status != "" {
		tables, err := h.tableService.GetTablesByStatus(ctx, status)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(200, tables)
	}

	tables, err := h.tableService.GetTables(ctx)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(200, tables)
}

func (h *TableHandler) GetTableBoard(c echo.Context) error {
	tables, err := h.tableService.GetTableBoard(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(200, tables)
}

type tableStatusRequest struct {
	Status string `json:"status"`
}

func (h *TableHandler) SetTableStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return errorResponse(c, err)
	}

	req := tableStatusRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	if err := h.tableService.SetStatus(c.Request().Context(), id, req.Status); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(200, map[string]string{"status": req.Status})
}
