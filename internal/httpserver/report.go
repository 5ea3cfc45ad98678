package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smallbiz-crm/internal/report"
)

func (h *handlers) listReports(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reports": report.Names()})
}

func (h *handlers) runReport(c *gin.Context) {
	f, err := queryFilter(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	res, err := h.deps.Reports.Run(c.Request.Context(), c.Param("report"), f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
