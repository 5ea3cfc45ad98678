package httpserver

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"smallbiz-crm/internal/exporter"
	exportsvc "smallbiz-crm/internal/service/export"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType  = "text/csv; charset=utf-8"
)

type customExportRequest struct {
	Type    string       `json:"type"`
	Fields  []string     `json:"fields"`
	Filters filterParams `json:"filters"`
}

// exportBulk always answers with a workbook, even when no rows match.
func (h *handlers) exportBulk(c *gin.Context) {
	entity := strings.ToLower(c.Param("entity"))
	f, err := queryFilter(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	sheets, err := h.deps.Exports.Bulk(c.Request.Context(), entity, f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	var buf bytes.Buffer
	if err := exporter.WriteXLSX(&buf, sheets...); err != nil {
		respondError(c, h.logger, fmt.Errorf("write workbook: %w", err))
		return
	}
	h.attachment(c, h.filename(entity, "xlsx"), xlsxContentType, buf.Bytes())
}

// exportCustom answers 404 when nothing matches the filters.
func (h *handlers) exportCustom(c *gin.Context) {
	var req customExportRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Type) == "" {
		badRequest(c, "type is required")
		return
	}
	f, err := req.Filters.toFilter()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	sheet, err := h.deps.Exports.Custom(c.Request.Context(), exportsvc.CustomRequest{
		Type:   req.Type,
		Fields: req.Fields,
		Filter: f,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	var buf bytes.Buffer
	if err := exporter.WriteCSV(&buf, sheet); err != nil {
		respondError(c, h.logger, fmt.Errorf("write csv: %w", err))
		return
	}
	name := strings.ToLower(strings.TrimSpace(req.Type)) + "_custom"
	h.attachment(c, h.filename(name, "csv"), csvContentType, buf.Bytes())
}

func (h *handlers) filename(base, ext string) string {
	return fmt.Sprintf("%s_%s.%s", base, h.deps.Now().Format("2006-01-02"), ext)
}

func (h *handlers) attachment(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, body)
}
