package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"smallbiz-crm/internal/importer"
)

type processRequest struct {
	Records []map[string]any `json:"records"`
	Type    string           `json:"type"`
}

type processResponse struct {
	Success bool     `json:"success"`
	Count   int      `json:"count"`
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
	Message string   `json:"message"`
}

// processRecords imports records the client already parsed from a file.
func (h *handlers) processRecords(c *gin.Context) {
	var req processRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entity, err := importer.ParseEntity(req.Type)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if len(req.Records) == 0 {
		badRequest(c, "records are required")
		return
	}
	if h.deps.MaxImportRows > 0 && len(req.Records) > h.deps.MaxImportRows {
		badRequest(c, fmt.Sprintf("too many records: %d (max %d)", len(req.Records), h.deps.MaxImportRows))
		return
	}

	res := h.deps.Normalizer.NormalizeObjects(req.Records)
	h.respondImport(c, entity, res)
}

// processSpreadsheet parses an uploaded .csv or .xlsx file and imports it.
func (h *handlers) processSpreadsheet(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			respondError(c, h.logger, err)
			return
		}
		badRequest(c, "file is required")
		return
	}
	entity, err := importer.ParseEntity(c.PostForm("type"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, h.logger, fmt.Errorf("open upload: %w", err))
		return
	}
	defer file.Close()

	rows, err := importer.ReadTable(header.Filename, file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if h.deps.MaxImportRows > 0 && len(rows)-1 > h.deps.MaxImportRows {
		badRequest(c, fmt.Sprintf("too many rows: %d (max %d)", len(rows)-1, h.deps.MaxImportRows))
		return
	}
	res, err := h.deps.Normalizer.Normalize(rows)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.respondImport(c, entity, res)
}

// respondImport runs the upsert pass and reports row and record errors
// together inside a 200 response.
func (h *handlers) respondImport(c *gin.Context, entity importer.Entity, res importer.Result) {
	summary := h.deps.Importer.Import(c.Request.Context(), entity, res.ValidRecords)

	var errs []string
	errs = append(errs, res.RowErrors...)
	errs = append(errs, summary.Errors...)
	if len(errs) == 0 {
		errs = nil
	}

	message := fmt.Sprintf("%d %s imported", summary.Count, entity)
	if len(errs) > 0 {
		message = fmt.Sprintf("%d %s imported, %d with errors", summary.Count, entity, len(errs))
	}
	h.logger.Info("import processed",
		"entity", string(entity),
		"count", summary.Count,
		"created", summary.Created,
		"updated", summary.Updated,
		"errors", len(errs),
		"request_id", requestIDFrom(c),
	)
	c.JSON(http.StatusOK, processResponse{
		Success: true,
		Count:   summary.Count,
		Created: summary.Created,
		Updated: summary.Updated,
		Errors:  errs,
		Message: message,
	})
}
