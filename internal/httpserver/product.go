package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"smallbiz-crm/internal/domain"
	productsvc "smallbiz-crm/internal/service/product"
)

type productResponse struct {
	domain.Product
	Price decimal.Decimal `json:"price"`
}

type variationResponse struct {
	productResponse
	Variant domain.VariantAttributes `json:"variant"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{Product: p, Price: domain.CentsToDecimal(p.PriceCents)}
}

func (h *handlers) listProducts(c *gin.Context) {
	f, err := queryFilter(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	products, err := h.deps.Products.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	c.JSON(http.StatusOK, newList(out))
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.Products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*p))
}

func (h *handlers) createProduct(c *gin.Context) {
	var in productsvc.Input
	if !h.bindJSON(c, &in) {
		return
	}
	p, err := h.deps.Products.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(*p))
}

func (h *handlers) listVariations(c *gin.Context) {
	variations, err := h.deps.Products.Variations(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	out := make([]variationResponse, 0, len(variations))
	for _, v := range variations {
		out = append(out, variationResponse{productResponse: toProductResponse(v.Product), Variant: v.Variant})
	}
	c.JSON(http.StatusOK, newList(out))
}
