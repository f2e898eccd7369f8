package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mauv0809/finance-dashboard/internal/charts"
	"github.com/mauv0809/finance-dashboard/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Chart handles GET /charts/:name.svg
// Renders one chart of the current selection. Responds 204 when the chart
// has nothing to plot.
func (h *Handler) Chart(c echo.Context) error {
	file := c.Param("file")
	name, ok := strings.CutSuffix(file, ".svg")
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown chart")
	}
	kind, err := charts.ParseKind(name)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	q, err := bindRange(c)
	if err != nil {
		return err
	}
	res, err := h.run(c, h.sessionUpload(c), q)
	if err != nil {
		status, perr := h.describe(err)
		return echo.NewHTTPError(status, perr.Message)
	}

	var buf bytes.Buffer
	if err := charts.RenderSVG(&buf, kind, res.Dataset); err != nil {
		if errors.Is(err, charts.ErrNoData) {
			return c.NoContent(http.StatusNoContent)
		}
		h.log.Errorw("Chart render failed", "chart", kind, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render chart")
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, "image/svg+xml", buf.Bytes())
}

// Export handles GET /export.xlsx
// Downloads the filtered table with its derived columns.
func (h *Handler) Export(c echo.Context) error {
	q, err := bindRange(c)
	if err != nil {
		return err
	}
	res, err := h.run(c, h.sessionUpload(c), q)
	if err != nil {
		status, perr := h.describe(err)
		return echo.NewHTTPError(status, perr.Message)
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, res.Dataset); err != nil {
		h.log.Errorw("Export failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build spreadsheet")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="dashboard.xlsx"`)
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
