package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smallbiz-crm/internal/domain"
)

type listResponse[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

func newList[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Count: len(items), Results: items}
}

func (h *handlers) listCustomers(c *gin.Context) {
	f, err := queryFilter(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	customers, err := h.deps.Customers.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newList(customers))
}

func (h *handlers) getCustomer(c *gin.Context) {
	customer, err := h.deps.Customers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *handlers) createCustomer(c *gin.Context) {
	var in domain.Contact
	if !h.bindJSON(c, &in) {
		return
	}
	customer, err := h.deps.Customers.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *handlers) updateCustomer(c *gin.Context) {
	var in domain.Contact
	if !h.bindJSON(c, &in) {
		return
	}
	customer, err := h.deps.Customers.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *handlers) deleteCustomer(c *gin.Context) {
	if err := h.deps.Customers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
