package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	leadsvc "smallbiz-crm/internal/service/lead"
)

func (h *handlers) listLeads(c *gin.Context) {
	f, err := queryFilter(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	leads, err := h.deps.Leads.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newList(leads))
}

func (h *handlers) getLead(c *gin.Context) {
	lead, err := h.deps.Leads.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (h *handlers) createLead(c *gin.Context) {
	var in leadsvc.Input
	if !h.bindJSON(c, &in) {
		return
	}
	lead, err := h.deps.Leads.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, lead)
}

// updateLead replaces the lead; moving it to won also ensures the customer.
func (h *handlers) updateLead(c *gin.Context) {
	var in leadsvc.Input
	if !h.bindJSON(c, &in) {
		return
	}
	lead, err := h.deps.Leads.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}
