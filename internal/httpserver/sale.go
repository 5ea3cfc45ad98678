package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"smallbiz-crm/internal/domain"
	salesvc "smallbiz-crm/internal/service/sale"
)

// saleResponse adds decimal amounts next to the stored cents.
type saleResponse struct {
	domain.Sale
	Total decimal.Decimal `json:"total"`
}

func toSaleResponse(s domain.Sale) saleResponse {
	return saleResponse{Sale: s, Total: domain.CentsToDecimal(s.TotalCents)}
}

func (h *handlers) listSales(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := queryFilter(c)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		sales, err := h.deps.Sales.List(c.Request.Context(), kind, f)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		out := make([]saleResponse, 0, len(sales))
		for _, s := range sales {
			out = append(out, toSaleResponse(s))
		}
		c.JSON(http.StatusOK, newList(out))
	}
}

func (h *handlers) getSale(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sale, err := h.deps.Sales.Get(c.Request.Context(), kind, c.Param("id"))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, toSaleResponse(*sale))
	}
}

func (h *handlers) createSale(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in salesvc.Input
		if !h.bindJSON(c, &in) {
			return
		}
		sale, err := h.deps.Sales.Create(c.Request.Context(), kind, in)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusCreated, toSaleResponse(*sale))
	}
}
