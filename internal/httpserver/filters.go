package httpserver

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"smallbiz-crm/internal/domain"
)

// filterParams is the filter set accepted in query strings and JSON bodies.
type filterParams struct {
	DateStart string `json:"dateStart" form:"dateStart"`
	DateEnd   string `json:"dateEnd" form:"dateEnd"`
	Brand     string `json:"brand" form:"brand"`
	Province  string `json:"province" form:"province"`
	City      string `json:"city" form:"city"`
	Source    string `json:"source" form:"source"`
	Status    string `json:"status" form:"status"`
}

func queryFilter(c *gin.Context) (domain.Filter, error) {
	var p filterParams
	if err := c.ShouldBindQuery(&p); err != nil {
		return domain.Filter{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return p.toFilter()
}

// toFilter parses the date bounds. A date-only dateEnd covers the whole day.
func (p filterParams) toFilter() (domain.Filter, error) {
	f := domain.Filter{
		Brand:    strings.TrimSpace(p.Brand),
		Province: strings.TrimSpace(p.Province),
		City:     strings.TrimSpace(p.City),
		Source:   strings.TrimSpace(p.Source),
		Status:   strings.TrimSpace(p.Status),
	}
	if p.DateStart != "" {
		t, _, err := parseBound(p.DateStart)
		if err != nil {
			return domain.Filter{}, fmt.Errorf("%w: dateStart %q", domain.ErrInvalidInput, p.DateStart)
		}
		f.DateStart = &t
	}
	if p.DateEnd != "" {
		t, dateOnly, err := parseBound(p.DateEnd)
		if err != nil {
			return domain.Filter{}, fmt.Errorf("%w: dateEnd %q", domain.ErrInvalidInput, p.DateEnd)
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.DateEnd = &t
	}
	if f.DateStart != nil && f.DateEnd != nil && f.DateEnd.Before(*f.DateStart) {
		return domain.Filter{}, fmt.Errorf("%w: dateEnd before dateStart", domain.ErrInvalidInput)
	}
	return f, nil
}

func parseBound(raw string) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	return t.UTC(), false, err
}
